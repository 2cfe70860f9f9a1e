/*
Copyright (C) 2025 [GrainArc]

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package GeoSat

import (
	"encoding/xml"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

var MainConfig GeoSatConfig

type GeoSatConfig struct {
	XMLName       xml.Name `xml:"config"`
	Compress      string   `xml:"compress"`
	BlockSize     string   `xml:"block_size"`
	DefaultNoData string   `xml:"default_nodata"`
}

func init() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatal("无法获取用户配置目录:", err)
	}
	configdata := filepath.Join(configDir, "GeoSat", "config.xml")
	xmlFile, err := os.Open(configdata)
	if err != nil {
		// 没有配置文件时使用内置默认值
		return
	}
	defer xmlFile.Close()

	xmlDecoder := xml.NewDecoder(xmlFile)
	err = xmlDecoder.Decode(&MainConfig)
	if err != nil {
		fmt.Println("Error  decoding  XML:", err)
		return
	}

}

// gtiffCreationOptions GeoTIFF创建参数（可被用户配置覆盖）
func gtiffCreationOptions() []string {
	compress := MainConfig.Compress
	if compress == "" {
		compress = "LZW"
	}
	blockSize := MainConfig.BlockSize
	if blockSize == "" {
		blockSize = "256"
	}
	return []string{
		"COMPRESS=" + compress,
		"TILED=YES",
		"BLOCKXSIZE=" + blockSize,
		"BLOCKYSIZE=" + blockSize,
	}
}

// DefaultNoDataValue 写出栅格时每个波段的默认NoData值
func DefaultNoDataValue() float64 {
	if MainConfig.DefaultNoData != "" {
		if v, err := strconv.ParseFloat(MainConfig.DefaultNoData, 64); err == nil {
			return v
		}
	}
	return -9999.9
}
