// GeoSat/tiff_writer.go
package GeoSat

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// WriteOptions GeoTIFF写出选项
type WriteOptions struct {
	PixelType   PixelType // 输出像素类型
	NoDataValue float64   // 每个波段的NoData值
}

// DefaultWriteOptions 默认写出选项
func DefaultWriteOptions() *WriteOptions {
	return &WriteOptions{
		PixelType:   DefaultPixelType,
		NoDataValue: DefaultNoDataValue(),
	}
}

// SaveTiff 将像素阵列写出为GeoTIFF
// 波段数由阵列维度决定：二维阵列写出单波段，三维阵列按最后一维写出多波段。
// 地理变换取自refGeometryPath，投影取自refProjectionPath，两者可以是同一文件。
// 每个波段都写入NoData标记，数据刷写到磁盘后才返回。
// 阵列尺寸与参考几何的栅格尺寸不一致时返回ErrShapeMismatch。
func SaveTiff(destPath string, array *RasterArray, refProjectionPath, refGeometryPath string, options *WriteOptions) error {
	if options == nil {
		options = DefaultWriteOptions()
	}
	if array == nil || len(array.Data) == 0 || array.Width <= 0 || array.Height <= 0 {
		return fmt.Errorf("empty raster array: %w", ErrShapeMismatch)
	}
	if expected := array.Width * array.Height * array.BandCount(); len(array.Data) != expected {
		return fmt.Errorf("array data length %d does not match %dx%dx%d: %w",
			len(array.Data), array.Width, array.Height, array.BandCount(), ErrShapeMismatch)
	}

	dataType, err := options.PixelType.GDALType()
	if err != nil {
		return err
	}

	// 读取参考投影
	projSource, err := OpenRasterDataset(refProjectionPath)
	if err != nil {
		return err
	}
	projection := projSource.projection
	projSource.Close()

	// 读取参考几何
	geomSource, err := OpenRasterDataset(refGeometryPath)
	if err != nil {
		return err
	}
	geoTransform := geomSource.geoTransform
	refWidth := geomSource.width
	refHeight := geomSource.height
	geomSource.Close()

	if array.Width != refWidth || array.Height != refHeight {
		return fmt.Errorf("array is %dx%d but reference geometry %s is %dx%d: %w",
			array.Width, array.Height, refGeometryPath, refWidth, refHeight, ErrShapeMismatch)
	}

	out, err := godal.Create(godal.GTiff, destPath, array.BandCount(), dataType, array.Width, array.Height,
		godal.CreationOption(gtiffCreationOptions()...))
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", destPath, err)
	}

	if err := out.SetGeoTransform(geoTransform); err != nil {
		out.Close()
		return fmt.Errorf("failed to set geotransform: %v", err)
	}
	if projection != "" && projection != "PIXEL" {
		if err := out.SetProjection(projection); err != nil {
			out.Close()
			return fmt.Errorf("failed to set projection: %v", err)
		}
	}

	for i, band := range out.Bands() {
		if err := band.SetNoData(options.NoDataValue); err != nil {
			out.Close()
			return fmt.Errorf("failed to set nodata on band %d: %v", i+1, err)
		}
		plane := array.bandPlane(i)
		if err := band.Write(0, 0, plane, array.Width, array.Height); err != nil {
			out.Close()
			return fmt.Errorf("failed to write band %d: %v", i+1, err)
		}
	}

	// 关闭句柄，确保数据落盘
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to flush %s: %v", destPath, err)
	}
	return nil
}
