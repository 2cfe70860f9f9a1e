package GeoSat

import (
	"fmt"
	"strconv"
)

// ==================== 栅格重采样 ====================

// ResizeTarget 重采样目标，尺寸模式与分辨率模式二选一
// 零值不代表任何模式，必须通过TargetSize或TargetResolution构造。
type ResizeTarget struct {
	mode   resizeMode
	width  int
	height int
	xRes   float64
	yRes   float64
}

type resizeMode int

const (
	resizeModeUnset resizeMode = iota
	resizeModeSize
	resizeModeResolution
)

// TargetSize 按目标像素尺寸重采样
func TargetSize(width, height int) ResizeTarget {
	return ResizeTarget{mode: resizeModeSize, width: width, height: height}
}

// TargetResolution 按目标分辨率重采样（单位与源影像坐标系一致）
func TargetResolution(xRes, yRes float64) ResizeTarget {
	return ResizeTarget{mode: resizeModeResolution, xRes: xRes, yRes: yRes}
}

// validate 检查目标参数是否完整有效
func (t ResizeTarget) validate() error {
	switch t.mode {
	case resizeModeSize:
		if t.width <= 0 || t.height <= 0 {
			return fmt.Errorf("target size %dx%d is not positive: %w", t.width, t.height, ErrConfigurationAmbiguous)
		}
	case resizeModeResolution:
		if t.xRes <= 0 || t.yRes <= 0 {
			return fmt.Errorf("target resolution %gx%g is not positive: %w", t.xRes, t.yRes, ErrConfigurationAmbiguous)
		}
	default:
		return fmt.Errorf("resize target not specified: %w", ErrConfigurationAmbiguous)
	}
	return nil
}

// ResizeInfo 重采样预览信息
type ResizeInfo struct {
	OriginalWidth  int
	OriginalHeight int
	OriginalResX   float64
	OriginalResY   float64
	TargetWidth    int
	TargetHeight   int
	TargetResX     float64
	TargetResY     float64
	BandCount      int
}

// ResizeRaster 重采样栅格到目标尺寸或分辨率
// 固定使用三次卷积重采样，输出GeoTIFF，已存在的目标文件被覆盖。
// 目标未通过构造函数指定时返回ErrConfigurationAmbiguous。
func ResizeRaster(srcPath, destPath string, target ResizeTarget, pixelType PixelType) error {
	if err := target.validate(); err != nil {
		return err
	}
	if _, err := pixelType.GDALType(); err != nil {
		return err
	}

	rd, err := OpenRasterDataset(srcPath)
	if err != nil {
		return err
	}
	defer rd.Close()

	switches := []string{
		"-of", "GTiff",
		"-r", "cubic",
		"-ot", pixelType.String(),
		"-overwrite",
	}
	switch target.mode {
	case resizeModeSize:
		switches = append(switches, "-ts", strconv.Itoa(target.width), strconv.Itoa(target.height))
	case resizeModeResolution:
		switches = append(switches,
			"-tr",
			strconv.FormatFloat(target.xRes, 'f', -1, 64),
			strconv.FormatFloat(target.yRes, 'f', -1, 64))
	}

	result, err := rd.dataset.Warp(destPath, switches)
	if err != nil {
		return fmt.Errorf("failed to resize %s: %v", srcPath, err)
	}
	return result.Close()
}

// GetResizeInfo 获取重采样预览信息（不执行实际重采样）
func GetResizeInfo(srcPath string, target ResizeTarget) (*ResizeInfo, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}

	rd, err := OpenRasterDataset(srcPath)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	srcResX := rd.geoTransform[1]
	srcResY := rd.geoTransform[5] // 通常为负值

	var targetWidth, targetHeight int
	var targetResX, targetResY float64

	switch target.mode {
	case resizeModeSize:
		targetWidth = target.width
		targetHeight = target.height
		targetResX = (float64(rd.width) * srcResX) / float64(targetWidth)
		targetResY = (float64(rd.height) * srcResY) / float64(targetHeight)
	case resizeModeResolution:
		targetResX = target.xRes
		targetResY = -target.yRes // 确保为负值
		if srcResY > 0 {
			targetResY = target.yRes
		}
		targetWidth = int(float64(rd.width) * srcResX / targetResX)
		targetHeight = int(float64(rd.height) * srcResY / targetResY)
		if targetWidth < 1 {
			targetWidth = 1
		}
		if targetHeight < 1 {
			targetHeight = 1
		}
	}

	return &ResizeInfo{
		OriginalWidth:  rd.width,
		OriginalHeight: rd.height,
		OriginalResX:   srcResX,
		OriginalResY:   srcResY,
		TargetWidth:    targetWidth,
		TargetHeight:   targetHeight,
		TargetResX:     targetResX,
		TargetResY:     targetResY,
		BandCount:      rd.bandCount,
	}, nil
}

// ==================== 批量重采样 ====================

// ResizeBatchConfig 批量重采样配置
type ResizeBatchConfig struct {
	InputPaths  []string // 输入文件路径
	OutputPaths []string // 输出文件路径
	Target      ResizeTarget
	PixelType   PixelType
}

// ResizeBatchResult 批量重采样结果
type ResizeBatchResult struct {
	InputPath  string
	OutputPath string
	Error      error
}

// ResizeBatch 批量执行重采样
func ResizeBatch(config *ResizeBatchConfig) []ResizeBatchResult {
	if config == nil || len(config.InputPaths) == 0 {
		return nil
	}

	if len(config.InputPaths) != len(config.OutputPaths) {
		return []ResizeBatchResult{{Error: fmt.Errorf("input and output paths count mismatch")}}
	}

	results := make([]ResizeBatchResult, len(config.InputPaths))

	for i, inputPath := range config.InputPaths {
		results[i].InputPath = inputPath
		results[i].OutputPath = config.OutputPaths[i]
		results[i].Error = ResizeRaster(inputPath, config.OutputPaths[i], config.Target, config.PixelType)
	}

	return results
}
