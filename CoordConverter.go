// CoordConverter.go
package GeoSat

import (
	"fmt"
	"math"
)

// WGS84椭球参数与UTM投影常数
const (
	utmK0 = 0.9996

	utmE   = 0.00669438
	utmE2  = utmE * utmE
	utmE3  = utmE2 * utmE
	utmEP2 = utmE / (1 - utmE)

	utmM1 = 1 - utmE/4 - 3*utmE2/64 - 5*utmE3/256
	utmM2 = 3*utmE/8 + 3*utmE2/32 + 45*utmE3/1024
	utmM3 = 15*utmE2/256 + 45*utmE3/1024
	utmM4 = 35 * utmE3 / 3072

	utmR = 6378137.0
)

// 纬度带字母，从80°S起每8°一个带（X带延伸到84°N）
const zoneLetters = "CDEFGHJKLMNPQRSTUVWXX"

// 100公里格网行字母（I和O不使用）
const gridRowLetters = "ABCDEFGHJKLMNPQRSTUV"

// 100公里格网列字母按带号循环使用三组
var gridColumnSets = [3]string{"ABCDEFGH", "JKLMNPQR", "STUVWXYZ"}

// ==================== UTM投影转换 ====================

// modAngle 把弧度角归一化到[-π, π)区间
func modAngle(value float64) float64 {
	m := math.Mod(value+math.Pi, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}
	return m - math.Pi
}

// zoneNumber 根据经纬度计算UTM带号，包含挪威西南和斯瓦尔巴群岛的例外带
func zoneNumber(lat, lon float64) int {
	if 56 <= lat && lat < 64 && 3 <= lon && lon < 12 {
		return 32
	}
	if 72 <= lat && lat <= 84 && lon >= 0 {
		switch {
		case lon < 9:
			return 31
		case lon < 21:
			return 33
		case lon < 33:
			return 35
		case lon < 42:
			return 37
		}
	}
	return int((lon+180)/6) + 1
}

// latitudeZoneLetter 计算纬度带字母
func latitudeZoneLetter(lat float64) string {
	return string(zoneLetters[int(lat+80)>>3])
}

// centralLongitude UTM带的中央经线
func centralLongitude(zone int) float64 {
	return float64((zone-1)*6 - 180 + 3)
}

// ToProjected 将经纬度坐标转换为UTM投影坐标
// 返回东坐标、北坐标（南半球含10,000,000米假北偏移）、带号和纬度带字母。
// 带号按经度自动选择，纬度限制在80°S到84°N之间。
func ToProjected(lat, lon float64) (easting, northing float64, zoneNum int, zoneLetter string, err error) {
	if lat < -80 || lat > 84 {
		return 0, 0, 0, "", fmt.Errorf("latitude %g out of range (must be between 80 deg S and 84 deg N)", lat)
	}
	if lon < -180 || lon >= 180 {
		return 0, 0, 0, "", fmt.Errorf("longitude %g out of range (must be between 180 deg W and 180 deg E)", lon)
	}

	latRad := lat * math.Pi / 180
	latSin := math.Sin(latRad)
	latCos := math.Cos(latRad)
	latTan := latSin / latCos
	latTan2 := latTan * latTan
	latTan4 := latTan2 * latTan2

	zoneNum = zoneNumber(lat, lon)
	zoneLetter = latitudeZoneLetter(lat)

	lonRad := lon * math.Pi / 180
	centralLonRad := centralLongitude(zoneNum) * math.Pi / 180

	n := utmR / math.Sqrt(1-utmE*latSin*latSin)
	c := utmEP2 * latCos * latCos

	a := latCos * modAngle(lonRad-centralLonRad)
	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	m := utmR * (utmM1*latRad - utmM2*math.Sin(2*latRad) + utmM3*math.Sin(4*latRad) - utmM4*math.Sin(6*latRad))

	easting = utmK0*n*(a+a3/6*(1-latTan2+c)+a5/120*(5-18*latTan2+latTan4+72*c-58*utmEP2)) + 500000
	northing = utmK0 * (m + n*latTan*(a2/2+a4/24*(5-latTan2+9*c+4*c*c)+a6/720*(61-58*latTan2+latTan4+600*c-330*utmEP2)))

	// 南半球使用假北偏移
	if lat < 0 {
		northing += 10000000
	}

	return easting, northing, zoneNum, zoneLetter, nil
}

// ==================== 军事格网标识 ====================

// ToGridTile 将经纬度坐标转换为格网切片标识
// 标识由前缀'T'加5位格网编码组成：2位带号、纬度带字母和100公里格网的列行字母。
// 相同输入始终返回相同标识。
func ToGridTile(lat, lon float64) (string, error) {
	easting, northing, zoneNum, zoneLetter, err := ToProjected(lat, lon)
	if err != nil {
		return "", err
	}

	colIndex := int(easting / 100000)
	if colIndex < 1 {
		colIndex = 1
	} else if colIndex > 8 {
		colIndex = 8
	}
	colLetter := gridColumnSets[(zoneNum-1)%3][colIndex-1]

	// 行字母每2000公里循环一次，偶数带偏移5个字母
	rowIndex := int(math.Mod(northing/100000, 20))
	if zoneNum%2 == 0 {
		rowIndex = (rowIndex + 5) % 20
	}
	rowLetter := gridRowLetters[rowIndex]

	return fmt.Sprintf("T%02d%s%c%c", zoneNum, zoneLetter, colLetter, rowLetter), nil
}
