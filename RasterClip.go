package GeoSat

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// vectorHasGeometry 检查矢量数据集中是否存在非空几何
func vectorHasGeometry(ds *godal.Dataset) bool {
	for _, layer := range ds.Layers() {
		layer.ResetReading()
		for {
			feature := layer.NextFeature()
			if feature == nil {
				break
			}
			geom := feature.Geometry()
			usable := geom != nil && !geom.Empty()
			feature.Close()
			if usable {
				return true
			}
		}
	}
	return false
}

// CropRasterToCutline 按矢量边界裁剪栅格
// 输出范围收缩到边界几何的包络，几何外的像素被剔除，固定使用三次卷积重采样。
// 矢量无法打开或不含可用几何时返回ErrGeometryUnavailable。
func CropRasterToCutline(srcPath, destPath, cutlinePath string, pixelType PixelType) error {
	if _, err := pixelType.GDALType(); err != nil {
		return err
	}
	InitializeGDAL()

	// 先验证矢量中存在可用的边界几何
	vector, err := godal.Open(cutlinePath, godal.VectorOnly())
	if err != nil {
		return fmt.Errorf("failed to open cutline %s: %w: %v", cutlinePath, ErrGeometryUnavailable, err)
	}
	hasGeometry := vectorHasGeometry(vector)
	vector.Close()
	if !hasGeometry {
		return fmt.Errorf("cutline %s contains no usable geometry: %w", cutlinePath, ErrGeometryUnavailable)
	}

	rd, err := OpenRasterDataset(srcPath)
	if err != nil {
		return err
	}
	defer rd.Close()

	switches := []string{
		"-of", "GTiff",
		"-cutline", cutlinePath,
		"-crop_to_cutline",
		"-r", "cubic",
		"-ot", pixelType.String(),
		"-overwrite",
	}

	result, err := rd.dataset.Warp(destPath, switches)
	if err != nil {
		return fmt.Errorf("failed to crop %s with cutline %s: %v", srcPath, cutlinePath, err)
	}
	return result.Close()
}
