package GeoSat

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RasterProduct 栅格产品登记记录
type RasterProduct struct {
	ID         uint   `gorm:"primaryKey"`
	Path       string `gorm:"uniqueIndex;size:512"`
	Width      int
	Height     int
	BandCount  int
	PixelType  string
	Projection string
	XRes       float64
	YRes       float64
	MinX       float64
	MinY       float64
	MaxX       float64
	MaxY       float64
	CenterTile string // 地理坐标系产品的中心格网切片标识，其余为空
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaveRasterProductToDB 将栅格产品元数据登记到数据库
// 同一路径重复登记时更新旧记录。
func SaveRasterProductToDB(DB *gorm.DB, imagePath string) (*RasterProduct, error) {
	info, err := GetRasterInfo(imagePath)
	if err != nil {
		return nil, fmt.Errorf("读取栅格元数据失败: %w", err)
	}

	product := &RasterProduct{
		Path:       imagePath,
		Width:      info.Width,
		Height:     info.Height,
		BandCount:  info.BandCount,
		PixelType:  info.DataType,
		Projection: info.Projection,
		XRes:       info.ResX,
		YRes:       info.ResY,
		MinX:       info.Bounds[0],
		MinY:       info.Bounds[1],
		MaxX:       info.Bounds[2],
		MaxY:       info.Bounds[3],
	}

	if info.IsGeographic {
		tile, err := info.CenterGridTile()
		if err != nil {
			log.Printf("计算中心格网切片失败，跳过: %v", err)
		} else {
			product.CenterTile = tile
		}
	}

	if err := DB.AutoMigrate(&RasterProduct{}); err != nil {
		return nil, fmt.Errorf("创建产品表失败: %v", err)
	}

	err = DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		UpdateAll: true,
	}).Create(product).Error
	if err != nil {
		return nil, fmt.Errorf("登记产品失败: %v", err)
	}

	log.Printf("成功登记栅格产品: %s", imagePath)
	return product, nil
}

// GetRasterProduct 按路径查询已登记的产品
func GetRasterProduct(DB *gorm.DB, imagePath string) (*RasterProduct, error) {
	var product RasterProduct
	err := DB.Where("path = ?", imagePath).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("产品未登记: %s: %w", imagePath, ErrDataUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("查询产品失败: %v", err)
	}
	return &product, nil
}

// ListRasterProducts 列出全部已登记的产品
func ListRasterProducts(DB *gorm.DB) ([]RasterProduct, error) {
	var products []RasterProduct
	err := DB.Order("path").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("查询产品列表失败: %v", err)
	}
	return products, nil
}
