// RasterMosaic.go
package GeoSat

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/google/uuid"
)

// MosaicInfo 镶嵌信息
type MosaicInfo struct {
	MinX, MinY, MaxX, MaxY float64
	ResX, ResY             float64 // ResY为负值（Y轴向下）
	Width, Height          int
	BandCount              int
	DataType               string
	Projection             string
}

// BuildVirtualMosaic 将多个栅格组合为虚拟镶嵌描述文件（VRT）
// 只生成轻量描述文件，不复制像素数据。重叠区域中排序靠后的源覆盖靠前的源。
// 源列表为空或任一源无法打开时返回ErrDataUnavailable。
func BuildVirtualMosaic(sourcePaths []string, descriptorPath string) error {
	InitializeGDAL()

	if len(sourcePaths) == 0 {
		return fmt.Errorf("no source rasters provided: %w", ErrDataUnavailable)
	}

	// 允许源之间存在投影差异
	switches := []string{"-allow_projection_difference"}

	vrt, err := godal.BuildVRT(descriptorPath, sourcePaths, switches)
	if err != nil {
		return fmt.Errorf("failed to build virtual mosaic %s: %w: %v", descriptorPath, ErrDataUnavailable, err)
	}

	// 关闭句柄，把描述文件刷写到磁盘
	if err := vrt.Close(); err != nil {
		return fmt.Errorf("failed to flush virtual mosaic %s: %v", descriptorPath, err)
	}
	return nil
}

// MaterializeMosaic 将虚拟镶嵌描述文件落盘为GeoTIFF
// 描述文件损坏或其引用的源缺失时返回ErrRenderFailure。
func MaterializeMosaic(descriptorPath, destPath string) error {
	InitializeGDAL()

	vrt, err := godal.Open(descriptorPath)
	if err != nil {
		return fmt.Errorf("failed to open mosaic descriptor %s: %w: %v", descriptorPath, ErrRenderFailure, err)
	}
	defer vrt.Close()

	switches := []string{
		"-of", "GTiff",
		"-co", "COMPRESS=NONE",
		"-co", "INTERLEAVE=BAND",
		"-co", "TILED=YES",
	}

	result, err := vrt.Translate(destPath, switches)
	if err != nil {
		return fmt.Errorf("failed to materialize mosaic to %s: %w: %v", destPath, ErrRenderFailure, err)
	}
	return result.Close()
}

// ==================== 合并流水线 ====================

// mosaicScratch 合并过程中临时描述文件的作用域管理
type mosaicScratch struct {
	path string
	kept bool
}

func newMosaicScratch(path string) *mosaicScratch {
	return &mosaicScratch{path: path}
}

// Preserve 标记临时文件保留供诊断，之后Release不再删除
func (s *mosaicScratch) Preserve() {
	s.kept = true
}

// Release 删除临时描述文件
func (s *mosaicScratch) Release() error {
	if s.kept {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove mosaic descriptor %s: %v", s.path, err)
	}
	return nil
}

// MergeRasters 合并多个栅格为单个GeoTIFF
// 先在descriptorPath构建虚拟镶嵌，再落盘到destPath，成功后删除描述文件。
// 落盘失败时描述文件保留在原位置供诊断。
func MergeRasters(sourcePaths []string, descriptorPath, destPath string) error {
	if err := BuildVirtualMosaic(sourcePaths, descriptorPath); err != nil {
		return err
	}

	scratch := newMosaicScratch(descriptorPath)
	if err := MaterializeMosaic(descriptorPath, destPath); err != nil {
		scratch.Preserve()
		log.Printf("merge failed, mosaic descriptor kept for inspection: %s", descriptorPath)
		return fmt.Errorf("merge failed, descriptor kept at %s: %w", descriptorPath, err)
	}
	return scratch.Release()
}

// MergeRastersAuto 合并多个栅格，临时描述文件名自动生成
// 描述文件放在输出目录下，命名为 mosaic_<taskid>.vrt。
func MergeRastersAuto(sourcePaths []string, destPath string) error {
	taskid := uuid.New().String()
	descriptorPath := filepath.Join(filepath.Dir(destPath), fmt.Sprintf("mosaic_%s.vrt", taskid))
	return MergeRasters(sourcePaths, descriptorPath, destPath)
}

// GetMosaicInfo 获取镶嵌预览信息（不执行实际落盘）
// 在内存文件系统中构建临时描述文件并读取其结构。
func GetMosaicInfo(sourcePaths []string) (*MosaicInfo, error) {
	InitializeGDAL()

	if len(sourcePaths) == 0 {
		return nil, fmt.Errorf("no source rasters provided: %w", ErrDataUnavailable)
	}

	vsiPath := fmt.Sprintf("/vsimem/mosaic_preview_%s.vrt", uuid.New().String())
	vrt, err := godal.BuildVRT(vsiPath, sourcePaths, []string{"-allow_projection_difference"})
	if err != nil {
		return nil, fmt.Errorf("failed to build mosaic preview: %w: %v", ErrDataUnavailable, err)
	}
	defer godal.VSIUnlink(vsiPath)
	defer vrt.Close()

	structure := vrt.Structure()
	geoTransform, err := vrt.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to get mosaic geotransform: %v", err)
	}

	minX := geoTransform[0]
	maxY := geoTransform[3]
	maxX := minX + float64(structure.SizeX)*geoTransform[1]
	minY := maxY + float64(structure.SizeY)*geoTransform[5]

	dataType := "Unknown"
	if structure.NBands > 0 {
		dataType = vrt.Bands()[0].Structure().DataType.String()
	}

	info := &MosaicInfo{
		MinX:       minX,
		MinY:       minY,
		MaxX:       maxX,
		MaxY:       maxY,
		ResX:       geoTransform[1],
		ResY:       geoTransform[5],
		Width:      structure.SizeX,
		Height:     structure.SizeY,
		BandCount:  structure.NBands,
		DataType:   dataType,
		Projection: vrt.Projection(),
	}

	return info, nil
}

// ==================== 批量处理 ====================

// MergeBatchResult 批量合并结果
type MergeBatchResult struct {
	OutputPath     string
	DescriptorKept bool // 落盘失败时临时描述文件是否被保留
	Error          error
}

// MergeBatchConfig 批量合并配置
type MergeBatchConfig struct {
	InputGroups [][]string // 输入文件组
	OutputPaths []string   // 输出路径
}

// MergeRastersBatch 批量执行合并
func MergeRastersBatch(config *MergeBatchConfig) []MergeBatchResult {
	if config == nil || len(config.InputGroups) == 0 {
		return nil
	}

	if len(config.InputGroups) != len(config.OutputPaths) {
		return []MergeBatchResult{{Error: fmt.Errorf("input groups and output paths count mismatch")}}
	}

	results := make([]MergeBatchResult, len(config.InputGroups))

	// 简单串行处理（GDAL不是完全线程安全的）
	for i, group := range config.InputGroups {
		results[i].OutputPath = config.OutputPaths[i]
		err := MergeRastersAuto(group, config.OutputPaths[i])
		results[i].Error = err
		results[i].DescriptorKept = errors.Is(err, ErrRenderFailure)
	}

	return results
}

// ==================== 验证函数 ====================

// ValidateMergeInputs 验证合并输入的波段数和数据类型是否一致
func ValidateMergeInputs(sourcePaths []string) error {
	if len(sourcePaths) == 0 {
		return fmt.Errorf("no source rasters provided: %w", ErrDataUnavailable)
	}

	var refBandCount int
	var refDataType string

	for i, path := range sourcePaths {
		rd, err := OpenRasterDataset(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		bandCount := rd.GetBandCount()
		dataType := "Unknown"
		if bandCount > 0 {
			dataType = rd.dataset.Bands()[0].Structure().DataType.String()
		}
		rd.Close()

		if i == 0 {
			refBandCount = bandCount
			refDataType = dataType
			continue
		}

		if bandCount != refBandCount {
			return fmt.Errorf("band count mismatch: %s has %d bands, expected %d", path, bandCount, refBandCount)
		}
		if dataType != refDataType {
			return fmt.Errorf("data type mismatch: %s has type %s, expected %s", path, dataType, refDataType)
		}
	}

	return nil
}

// EstimateMergeSize 估算合并结果大小（字节）
func EstimateMergeSize(sourcePaths []string) (int64, error) {
	info, err := GetMosaicInfo(sourcePaths)
	if err != nil {
		return 0, err
	}

	bytesPerPixel := 1 // 默认
	if pt, err := ParsePixelType(info.DataType); err == nil {
		bytesPerPixel = pt.BytesPerPixel()
	}

	size := int64(info.Width) * int64(info.Height) * int64(info.BandCount) * int64(bytesPerPixel)
	return size, nil
}
