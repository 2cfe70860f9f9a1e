// errors.go
package GeoSat

import "errors"

// 包级错误哨兵，调用方通过 errors.Is 判断失败类别。
var (
	// ErrDataUnavailable 输入栅格不存在或无法被GDAL打开
	ErrDataUnavailable = errors.New("raster data unavailable")

	// ErrRenderFailure 虚拟镶嵌落盘失败（描述文件损坏或引用的源缺失）
	ErrRenderFailure = errors.New("mosaic render failure")

	// ErrGeometryUnavailable 矢量数据中没有可用的边界几何
	ErrGeometryUnavailable = errors.New("boundary geometry unavailable")

	// ErrShapeMismatch 数组形状与参考栅格尺寸不一致
	ErrShapeMismatch = errors.New("array shape mismatch")

	// ErrConfigurationAmbiguous 互斥参数组合无法确定唯一行为
	ErrConfigurationAmbiguous = errors.New("ambiguous configuration")

	// ErrUnsupportedPixelType 请求的像素类型不在支持范围内
	ErrUnsupportedPixelType = errors.New("unsupported pixel type")
)
