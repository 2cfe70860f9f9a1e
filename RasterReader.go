// RasterReader.go
package GeoSat

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/airbusgeo/godal"
)

// RasterDataset 栅格数据集
type RasterDataset struct {
	dataset      *godal.Dataset
	filePath     string
	width        int
	height       int
	bandCount    int
	geoTransform [6]float64
	bounds       [4]float64 // minX, minY, maxX, maxY
	projection   string
	hasGeoInfo   bool // 标记是否有地理信息
}

// DatasetInfo 数据集信息
type DatasetInfo struct {
	Width        int
	Height       int
	BandCount    int
	GeoTransform [6]float64
	Projection   string
	HasGeoInfo   bool
}

// imagePath: 影像文件路径
func OpenRasterDataset(imagePath string) (*RasterDataset, error) {
	InitializeGDAL()

	// 打开数据集
	dataset, err := godal.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w: %v", imagePath, ErrDataUnavailable, err)
	}

	// 获取基本信息
	structure := dataset.Structure()
	width := structure.SizeX
	height := structure.SizeY
	bandCount := structure.NBands

	// 检查是否有地理信息
	geoTransform, err := dataset.GeoTransform()
	hasGeoInfo := err == nil

	// 获取投影信息
	projection := dataset.Projection()

	// 如果没有地理信息，创建像素坐标系的地理变换
	if !hasGeoInfo {
		geoTransform[0] = 0.0  // 左上角X坐标
		geoTransform[1] = 1.0  // X方向像素分辨率
		geoTransform[2] = 0.0  // 旋转参数
		geoTransform[3] = 0.0  // 左上角Y坐标
		geoTransform[4] = 0.0  // 旋转参数
		geoTransform[5] = -1.0 // Y方向像素分辨率(负值，因为图像Y轴向下)
		projection = "PIXEL"   // 标记为像素坐标系
	}

	// 计算边界
	minX := geoTransform[0]
	maxY := geoTransform[3]
	maxX := minX + float64(width)*geoTransform[1]
	minY := maxY + float64(height)*geoTransform[5]

	rd := &RasterDataset{
		dataset:      dataset,
		filePath:     imagePath,
		width:        width,
		height:       height,
		bandCount:    bandCount,
		geoTransform: geoTransform,
		bounds:       [4]float64{minX, minY, maxX, maxY},
		projection:   projection,
		hasGeoInfo:   hasGeoInfo,
	}

	runtime.SetFinalizer(rd, (*RasterDataset).Close)

	return rd, nil
}

// Close 关闭数据集
func (rd *RasterDataset) Close() {
	if rd.dataset != nil {
		rd.dataset.Close()
		rd.dataset = nil
	}
}

// GetInfo 获取数据集信息
func (rd *RasterDataset) GetInfo() DatasetInfo {
	return DatasetInfo{
		Width:        rd.width,
		Height:       rd.height,
		BandCount:    rd.bandCount,
		GeoTransform: rd.geoTransform,
		Projection:   rd.projection,
		HasGeoInfo:   rd.hasGeoInfo,
	}
}

// GetWidth 获取影像宽度（像素）
func (rd *RasterDataset) GetWidth() int {
	return rd.width
}

// GetHeight 获取影像高度（像素）
func (rd *RasterDataset) GetHeight() int {
	return rd.height
}

// GetBandCount 获取波段数
func (rd *RasterDataset) GetBandCount() int {
	return rd.bandCount
}

// GetBounds 获取边界
func (rd *RasterDataset) GetBounds() (minX, minY, maxX, maxY float64) {
	return rd.bounds[0], rd.bounds[1], rd.bounds[2], rd.bounds[3]
}

// ==================== 像素阵列读取 ====================

// RasterArray 像素阵列，按行主序存储
// Bands为0时表示二维阵列（单波段）；大于0时表示波段在最后一维的三维阵列，
// 像素(row, col)的第band个波段位于 Data[(row*Width+col)*Bands+band]。
type RasterArray struct {
	Data   []float64
	Width  int
	Height int
	Bands  int
}

// Rank 阵列维度（2或3）
func (a *RasterArray) Rank() int {
	if a.Bands == 0 {
		return 2
	}
	return 3
}

// BandCount 阵列包含的波段数
func (a *RasterArray) BandCount() int {
	if a.Bands == 0 {
		return 1
	}
	return a.Bands
}

// Value 读取二维阵列中(row, col)处的像素值
func (a *RasterArray) Value(row, col int) float64 {
	return a.Data[row*a.Width+col]
}

// BandValue 读取(row, col)处第band个波段的像素值（band从0开始）
func (a *RasterArray) BandValue(row, col, band int) float64 {
	if a.Bands == 0 {
		return a.Value(row, col)
	}
	return a.Data[(row*a.Width+col)*a.Bands+band]
}

// bandPlane 提取单个波段的平面数据（band从0开始）
func (a *RasterArray) bandPlane(band int) []float64 {
	if a.Bands == 0 {
		return a.Data
	}
	plane := make([]float64, a.Width*a.Height)
	for i := range plane {
		plane[i] = a.Data[i*a.Bands+band]
	}
	return plane
}

// AsArray 读取整个数据集为像素阵列
// 单波段返回二维阵列，多波段返回波段在最后一维的三维阵列。
func (rd *RasterDataset) AsArray() (*RasterArray, error) {
	if rd.dataset == nil {
		return nil, fmt.Errorf("dataset is nil")
	}

	if rd.bandCount == 1 {
		return rd.BandAsArray(1)
	}

	buffer := make([]float64, rd.width*rd.height*rd.bandCount)
	if err := rd.dataset.Read(0, 0, buffer, rd.width, rd.height); err != nil {
		return nil, fmt.Errorf("failed to read raster data: %v", err)
	}

	return &RasterArray{
		Data:   buffer,
		Width:  rd.width,
		Height: rd.height,
		Bands:  rd.bandCount,
	}, nil
}

// BandAsArray 读取指定波段为二维阵列（band从1开始）
func (rd *RasterDataset) BandAsArray(band int) (*RasterArray, error) {
	if rd.dataset == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	if band < 1 || band > rd.bandCount {
		return nil, fmt.Errorf("invalid band index: %d (dataset has %d bands)", band, rd.bandCount)
	}

	buffer := make([]float64, rd.width*rd.height)
	bands := rd.dataset.Bands()
	if err := bands[band-1].Read(0, 0, buffer, rd.width, rd.height); err != nil {
		return nil, fmt.Errorf("failed to read band %d: %v", band, err)
	}

	return &RasterArray{
		Data:   buffer,
		Width:  rd.width,
		Height: rd.height,
		Bands:  0,
	}, nil
}

// ReadAsArray 打开影像并读取为像素阵列
func ReadAsArray(imagePath string) (*RasterArray, error) {
	rd, err := OpenRasterDataset(imagePath)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	return rd.AsArray()
}

// ReadBandAsArray 打开影像并读取指定波段为二维阵列
func ReadBandAsArray(imagePath string, band int) (*RasterArray, error) {
	rd, err := OpenRasterDataset(imagePath)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	return rd.BandAsArray(band)
}

// ==================== 窗口提取 ====================

// clipWindowToExtent 将像素窗口收缩到影像范围内
func clipWindowToExtent(offsetX, offsetY, width, height, maxWidth, maxHeight int) (int, int) {
	if offsetX+width > maxWidth {
		width = maxWidth - offsetX
	}
	if offsetY+height > maxHeight {
		height = maxHeight - offsetY
	}
	return width, height
}

// ExtractWindow 提取像素窗口并保存为GeoTIFF
// 窗口超出影像范围时自动收缩到有效区域，输出文件只包含有效像素。
func (rd *RasterDataset) ExtractWindow(destPath string, offsetX, offsetY, width, height int, pixelType PixelType, noDataValue *float64) error {
	if rd.dataset == nil {
		return fmt.Errorf("dataset is nil")
	}
	if offsetX < 0 || offsetY < 0 || offsetX >= rd.width || offsetY >= rd.height {
		return fmt.Errorf("window offset (%d, %d) out of extent %dx%d", offsetX, offsetY, rd.width, rd.height)
	}
	if _, err := pixelType.GDALType(); err != nil {
		return err
	}

	clipWidth, clipHeight := clipWindowToExtent(offsetX, offsetY, width, height, rd.width, rd.height)
	if clipWidth <= 0 || clipHeight <= 0 {
		return fmt.Errorf("window %dx%d at (%d, %d) has no valid pixels", width, height, offsetX, offsetY)
	}

	switches := []string{
		"-of", "GTiff",
		"-srcwin",
		strconv.Itoa(offsetX), strconv.Itoa(offsetY),
		strconv.Itoa(clipWidth), strconv.Itoa(clipHeight),
		"-ot", pixelType.String(),
	}
	for _, co := range gtiffCreationOptions() {
		switches = append(switches, "-co", co)
	}
	if noDataValue != nil {
		switches = append(switches, "-a_nodata", strconv.FormatFloat(*noDataValue, 'f', -1, 64))
	}

	result, err := rd.dataset.Translate(destPath, switches)
	if err != nil {
		return fmt.Errorf("failed to extract window to %s: %v", destPath, err)
	}
	return result.Close()
}
