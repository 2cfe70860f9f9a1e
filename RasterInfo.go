// RasterInfo.go
package GeoSat

import (
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RasterBandInfo 波段元数据
type RasterBandInfo struct {
	BandIndex   int
	DataType    string
	NoDataValue float64
	HasNoData   bool
}

// RasterInfo 栅格元数据
type RasterInfo struct {
	Path         string
	Width        int
	Height       int
	BandCount    int
	DataType     string // 第一个波段的数据类型
	GeoTransform [6]float64
	ResX, ResY   float64
	Bounds       [4]float64 // minX, minY, maxX, maxY
	Projection   string
	IsGeographic bool // 坐标系是否为地理坐标（经纬度）
	HasGeoInfo   bool
	Bands        []RasterBandInfo
}

// GetRasterInfo 读取栅格元数据
func GetRasterInfo(imagePath string) (*RasterInfo, error) {
	rd, err := OpenRasterDataset(imagePath)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	info := &RasterInfo{
		Path:         imagePath,
		Width:        rd.width,
		Height:       rd.height,
		BandCount:    rd.bandCount,
		GeoTransform: rd.geoTransform,
		ResX:         rd.geoTransform[1],
		ResY:         rd.geoTransform[5],
		Bounds:       rd.bounds,
		Projection:   rd.projection,
		HasGeoInfo:   rd.hasGeoInfo,
	}

	for i, band := range rd.dataset.Bands() {
		structure := band.Structure()
		noData, hasNoData := band.NoData()
		info.Bands = append(info.Bands, RasterBandInfo{
			BandIndex:   i + 1,
			DataType:    structure.DataType.String(),
			NoDataValue: noData,
			HasNoData:   hasNoData,
		})
	}
	if len(info.Bands) > 0 {
		info.DataType = info.Bands[0].DataType
	}

	// 无投影的栅格不查询SRS（句柄为空）
	if info.Projection != "" && info.Projection != "PIXEL" {
		info.IsGeographic = rd.dataset.SpatialRef().Geographic()
	}

	return info, nil
}

// CenterGridTile 计算栅格中心点所在的格网切片标识
// 只对地理坐标系（经纬度）的栅格有意义。
func (info *RasterInfo) CenterGridTile() (string, error) {
	if !info.IsGeographic {
		return "", fmt.Errorf("raster %s is not in a geographic coordinate system", info.Path)
	}
	centerLon := (info.Bounds[0] + info.Bounds[2]) / 2
	centerLat := (info.Bounds[1] + info.Bounds[3]) / 2
	return ToGridTile(centerLat, centerLon)
}

// ==================== 矢量信息读取 ====================

// VectorFeatureInfo 矢量要素信息
type VectorFeatureInfo struct {
	Geometry   orb.Geometry // 空几何要素为nil
	Attributes map[string]interface{}
}

// VectorInfo 矢量元数据（第一个图层）
type VectorInfo struct {
	Path         string
	LayerCount   int
	FeatureCount int
	Features     []VectorFeatureInfo
	Bounds       orb.Bound // 所有非空几何的联合包络
}

// GetVectorInfo 读取矢量数据的要素几何与属性
// 几何通过GeoJSON桥接为orb类型，属性按字段类型转换为Go原生值。
func GetVectorInfo(vectorPath string) (*VectorInfo, error) {
	InitializeGDAL()

	ds, err := godal.Open(vectorPath, godal.VectorOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to open vector %s: %w: %v", vectorPath, ErrDataUnavailable, err)
	}
	defer ds.Close()

	layers := ds.Layers()
	if len(layers) == 0 {
		return nil, fmt.Errorf("vector %s has no layers: %w", vectorPath, ErrGeometryUnavailable)
	}

	info := &VectorInfo{
		Path:       vectorPath,
		LayerCount: len(layers),
	}

	layer := layers[0]
	layer.ResetReading()
	boundsSet := false

	for {
		feature := layer.NextFeature()
		if feature == nil {
			break
		}

		featInfo := VectorFeatureInfo{Attributes: make(map[string]interface{})}
		for name, field := range feature.Fields() {
			switch field.Type() {
			case godal.FTInt, godal.FTInt64:
				featInfo.Attributes[name] = field.Int()
			case godal.FTReal:
				featInfo.Attributes[name] = field.Float()
			default:
				featInfo.Attributes[name] = field.String()
			}
		}

		if geom := feature.Geometry(); geom != nil && !geom.Empty() {
			if orbGeom, err := godalGeometryToOrb(geom); err == nil {
				featInfo.Geometry = orbGeom
				bound := orbGeom.Bound()
				if !boundsSet {
					info.Bounds = bound
					boundsSet = true
				} else {
					info.Bounds = info.Bounds.Union(bound)
				}
			}
		}

		feature.Close()
		info.Features = append(info.Features, featInfo)
	}

	info.FeatureCount = len(info.Features)
	return info, nil
}

// godalGeometryToOrb 将GDAL几何转换为orb.Geometry
func godalGeometryToOrb(geom *godal.Geometry) (orb.Geometry, error) {
	raw, err := geom.GeoJSON()
	if err != nil {
		return nil, fmt.Errorf("转换几何体失败: %v", err)
	}
	decoded, err := geojson.UnmarshalGeometry([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("解析几何体失败: %v", err)
	}
	return decoded.Geometry(), nil
}
