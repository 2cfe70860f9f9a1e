// RasterBand.go
package GeoSat

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// PixelType 输出栅格像素类型
type PixelType int

const (
	PixelFloat32 PixelType = iota // 默认类型
	PixelFloat64
	PixelUInt16
	PixelByte
)

// DefaultPixelType 未指定时的输出像素类型
const DefaultPixelType = PixelFloat32

// String 返回GDAL数据类型名称，用于命令行开关（-ot）
func (pt PixelType) String() string {
	switch pt {
	case PixelFloat32:
		return "Float32"
	case PixelFloat64:
		return "Float64"
	case PixelUInt16:
		return "UInt16"
	case PixelByte:
		return "Byte"
	default:
		return fmt.Sprintf("PixelType(%d)", int(pt))
	}
}

// GDALType 转换为godal数据类型
func (pt PixelType) GDALType() (godal.DataType, error) {
	switch pt {
	case PixelFloat32:
		return godal.Float32, nil
	case PixelFloat64:
		return godal.Float64, nil
	case PixelUInt16:
		return godal.UInt16, nil
	case PixelByte:
		return godal.Byte, nil
	default:
		return godal.Unknown, fmt.Errorf("%w: %d", ErrUnsupportedPixelType, int(pt))
	}
}

// Valid 判断是否为受支持的像素类型
func (pt PixelType) Valid() bool {
	_, err := pt.GDALType()
	return err == nil
}

// BytesPerPixel 单波段单像素字节数
func (pt PixelType) BytesPerPixel() int {
	switch pt {
	case PixelFloat64:
		return 8
	case PixelFloat32:
		return 4
	case PixelUInt16:
		return 2
	case PixelByte:
		return 1
	default:
		return 0
	}
}

// ParsePixelType 按GDAL类型名称解析像素类型
func ParsePixelType(name string) (PixelType, error) {
	switch name {
	case "", "Float32":
		return PixelFloat32, nil
	case "Float64":
		return PixelFloat64, nil
	case "UInt16":
		return PixelUInt16, nil
	case "Byte":
		return PixelByte, nil
	default:
		return DefaultPixelType, fmt.Errorf("%w: %s", ErrUnsupportedPixelType, name)
	}
}
