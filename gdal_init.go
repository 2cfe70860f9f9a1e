// gdal_init.go
package GeoSat

import (
	"sync"

	"github.com/airbusgeo/godal"
)

var gdalInitOnce sync.Once

// InitializeGDAL 注册GDAL驱动（全局一次）
// 所有打开/创建数据集的入口函数在使用GDAL前都会先调用它。
func InitializeGDAL() {
	gdalInitOnce.Do(func() {
		godal.RegisterAll()
	})
}
