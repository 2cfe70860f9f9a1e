package GeoSat

import (
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// TileOptions 切片选项
type TileOptions struct {
	TileWidth   int       // 切片宽度（像素）
	TileHeight  int       // 切片高度（像素）
	PixelType   PixelType // 输出像素类型
	NoDataValue *float64  // 输出NoData值（nil表示不设置）
}

// DefaultTileOptions 默认切片选项
func DefaultTileOptions() *TileOptions {
	return &TileOptions{
		TileWidth:  1024,
		TileHeight: 1024,
		PixelType:  DefaultPixelType,
	}
}

// TileRecord 单个切片的生成记录
type TileRecord struct {
	Index   int        // 切片索引（从1开始）
	Path    string     // 输出文件路径
	OffsetX int        // 窗口X偏移（像素）
	OffsetY int        // 窗口Y偏移（像素）
	Width   int        // 实际宽度（边缘切片小于TileWidth）
	Height  int        // 实际高度
	Bounds  [4]float64 // 地理边界 [minX, minY, maxX, maxY]
	Skipped bool       // 文件已存在被跳过
}

// TileCount 计算切片总数 ceil(width/tileWidth) * ceil(height/tileHeight)
func TileCount(width, height, tileWidth, tileHeight int) int {
	cols := (width + tileWidth - 1) / tileWidth
	rows := (height + tileHeight - 1) / tileHeight
	return cols * rows
}

// windowBounds 计算像素窗口的地理边界（忽略旋转项）
func (rd *RasterDataset) windowBounds(offsetX, offsetY, width, height int) [4]float64 {
	gt := rd.geoTransform
	minX := gt[0] + float64(offsetX)*gt[1]
	maxY := gt[3] + float64(offsetY)*gt[5]
	maxX := minX + float64(width)*gt[1]
	minY := maxY + float64(height)*gt[5]
	return [4]float64{minX, minY, maxX, maxY}
}

// TileRaster 将栅格按固定像素尺寸切片
// 输出文件命名为 {destPrefix}_{index}.tif，索引从1开始，X方向为外层循环。
// 右侧和底部的边缘切片按剩余像素输出，不做填充。
// 已存在的切片文件直接跳过，中断的切片任务可以安全续跑。
func TileRaster(srcPath, destPrefix string, options *TileOptions) ([]TileRecord, error) {
	if options == nil {
		options = DefaultTileOptions()
	}
	if options.TileWidth <= 0 || options.TileHeight <= 0 {
		return nil, fmt.Errorf("invalid tile size: %dx%d", options.TileWidth, options.TileHeight)
	}
	if _, err := options.PixelType.GDALType(); err != nil {
		return nil, err
	}

	rd, err := OpenRasterDataset(srcPath)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	records := make([]TileRecord, 0, TileCount(rd.width, rd.height, options.TileWidth, options.TileHeight))
	index := 0

	for i := 0; i < rd.width; i += options.TileWidth {
		for j := 0; j < rd.height; j += options.TileHeight {
			index++
			destName := fmt.Sprintf("%s_%d.tif", destPrefix, index)

			clipWidth, clipHeight := clipWindowToExtent(i, j, options.TileWidth, options.TileHeight, rd.width, rd.height)
			record := TileRecord{
				Index:   index,
				Path:    destName,
				OffsetX: i,
				OffsetY: j,
				Width:   clipWidth,
				Height:  clipHeight,
				Bounds:  rd.windowBounds(i, j, clipWidth, clipHeight),
			}

			if _, statErr := os.Stat(destName); statErr == nil {
				log.Printf("tile already exists, skipping: %s", destName)
				record.Skipped = true
				records = append(records, record)
				continue
			}

			// 窗口按完整切片尺寸请求，边缘收缩由提取层完成
			if err := rd.ExtractWindow(destName, i, j, options.TileWidth, options.TileHeight, options.PixelType, options.NoDataValue); err != nil {
				return records, fmt.Errorf("failed to generate tile %d: %w", index, err)
			}
			records = append(records, record)
		}
	}

	return records, nil
}

// WriteTileIndex 将切片记录写出为GeoJSON索引文件
// 每个切片一个面要素，属性包含索引、路径、像素窗口和跳过标记。
func WriteTileIndex(records []TileRecord, indexPath string) error {
	fc := geojson.NewFeatureCollection()

	for _, record := range records {
		b := record.Bounds
		ring := orb.Ring{
			{b[0], b[1]},
			{b[2], b[1]},
			{b[2], b[3]},
			{b[0], b[3]},
			{b[0], b[1]},
		}

		feature := geojson.NewFeature(orb.Polygon{ring})
		feature.Properties = geojson.Properties{
			"index":    record.Index,
			"path":     record.Path,
			"offset_x": record.OffsetX,
			"offset_y": record.OffsetY,
			"width":    record.Width,
			"height":   record.Height,
			"skipped":  record.Skipped,
		}
		fc.Append(feature)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal tile index: %v", err)
	}
	if err := os.WriteFile(indexPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write tile index %s: %v", indexPath, err)
	}
	return nil
}
