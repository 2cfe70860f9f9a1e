package GeoSat

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb/geojson"
)

func TestTileCount(t *testing.T) {
	tests := []struct {
		name                  string
		width, height         int
		tileWidth, tileHeight int
		want                  int
	}{
		{name: "exact multiple", width: 2048, height: 2048, tileWidth: 512, tileHeight: 512, want: 16},
		{name: "remainder both axes", width: 1000, height: 1000, tileWidth: 400, tileHeight: 400, want: 9},
		{name: "single tile", width: 1024, height: 1024, tileWidth: 1024, tileHeight: 1024, want: 1},
		{name: "one pixel over", width: 1025, height: 1024, tileWidth: 1024, tileHeight: 1024, want: 2},
		{name: "tiny raster", width: 1, height: 1, tileWidth: 1024, tileHeight: 1024, want: 1},
		{name: "remainder one axis", width: 1000, height: 800, tileWidth: 400, tileHeight: 400, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TileCount(tt.width, tt.height, tt.tileWidth, tt.tileHeight)
			if got != tt.want {
				t.Errorf("TileCount(%d, %d, %d, %d) = %d, want %d",
					tt.width, tt.height, tt.tileWidth, tt.tileHeight, got, tt.want)
			}
		})
	}
}

func TestTileRasterGrid(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.tif")
	gt := [6]float64{0, 1, 0, 1000, 0, -1}
	createTestRaster(t, srcPath, 1000, 1000, []float64{9}, &gt)

	prefix := filepath.Join(dir, "out")
	records, err := TileRaster(srcPath, prefix, &TileOptions{TileWidth: 400, TileHeight: 400, PixelType: PixelFloat32})
	if err != nil {
		t.Fatalf("TileRaster returned error: %v", err)
	}

	if len(records) != 9 {
		t.Fatalf("record count = %d, want 9", len(records))
	}

	// X方向外层循环：索引3、6为底边切片，7、8为右边切片，9为右下角
	wantSizes := map[int][2]int{
		1: {400, 400}, 2: {400, 400}, 3: {400, 200},
		4: {400, 400}, 5: {400, 400}, 6: {400, 200},
		7: {200, 400}, 8: {200, 400}, 9: {200, 200},
	}

	for _, rec := range records {
		want, ok := wantSizes[rec.Index]
		if !ok {
			t.Fatalf("unexpected tile index %d", rec.Index)
		}
		if rec.Width != want[0] || rec.Height != want[1] {
			t.Errorf("tile %d record size = %dx%d, want %dx%d", rec.Index, rec.Width, rec.Height, want[0], want[1])
		}
		if rec.Skipped {
			t.Errorf("tile %d marked skipped on first run", rec.Index)
		}

		wantPath := fmt.Sprintf("%s_%d.tif", prefix, rec.Index)
		if rec.Path != wantPath {
			t.Errorf("tile %d path = %q, want %q", rec.Index, rec.Path, wantPath)
		}

		out, err := OpenRasterDataset(rec.Path)
		if err != nil {
			t.Fatalf("failed to open tile %d: %v", rec.Index, err)
		}
		if out.GetWidth() != want[0] || out.GetHeight() != want[1] {
			t.Errorf("tile %d file size = %dx%d, want %dx%d", rec.Index, out.GetWidth(), out.GetHeight(), want[0], want[1])
		}
		out.Close()
	}

	// 右下角切片的地理边界
	last := records[8]
	if last.Bounds != [4]float64{800, 0, 1000, 200} {
		t.Errorf("tile 9 bounds = %v, want [800 0 1000 200]", last.Bounds)
	}
}

func TestTileRasterResume(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.tif")
	createTestRaster(t, srcPath, 1000, 1000, []float64{4}, nil)

	prefix := filepath.Join(dir, "tile")
	options := &TileOptions{TileWidth: 400, TileHeight: 400, PixelType: PixelFloat32}
	if _, err := TileRaster(srcPath, prefix, options); err != nil {
		t.Fatalf("first TileRaster run returned error: %v", err)
	}

	// 删除两个切片模拟中断
	removed := map[int]bool{2: true, 5: true}
	for idx := range removed {
		if err := os.Remove(fmt.Sprintf("%s_%d.tif", prefix, idx)); err != nil {
			t.Fatalf("failed to remove tile %d: %v", idx, err)
		}
	}

	keptTimes := make(map[int]time.Time)
	for idx := 1; idx <= 9; idx++ {
		if removed[idx] {
			continue
		}
		fi, err := os.Stat(fmt.Sprintf("%s_%d.tif", prefix, idx))
		if err != nil {
			t.Fatalf("stat tile %d: %v", idx, err)
		}
		keptTimes[idx] = fi.ModTime()
	}

	records, err := TileRaster(srcPath, prefix, options)
	if err != nil {
		t.Fatalf("resume TileRaster run returned error: %v", err)
	}
	if len(records) != 9 {
		t.Fatalf("resume record count = %d, want 9", len(records))
	}

	for _, rec := range records {
		if removed[rec.Index] {
			if rec.Skipped {
				t.Errorf("tile %d was deleted but marked skipped", rec.Index)
			}
		} else {
			if !rec.Skipped {
				t.Errorf("tile %d exists but not marked skipped", rec.Index)
			}
		}
		if _, err := os.Stat(rec.Path); err != nil {
			t.Errorf("tile %d missing after resume: %v", rec.Index, err)
		}
	}

	// 已有切片保持原样
	for idx, before := range keptTimes {
		fi, err := os.Stat(fmt.Sprintf("%s_%d.tif", prefix, idx))
		if err != nil {
			t.Fatalf("stat tile %d after resume: %v", idx, err)
		}
		if !fi.ModTime().Equal(before) {
			t.Errorf("tile %d was rewritten during resume", idx)
		}
	}
}

func TestTileRasterSmallerThanTile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "small.tif")
	createTestRaster(t, srcPath, 100, 80, []float64{2}, nil)

	records, err := TileRaster(srcPath, filepath.Join(dir, "small_out"), nil)
	if err != nil {
		t.Fatalf("TileRaster returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("record count = %d, want 1", len(records))
	}
	if records[0].Width != 100 || records[0].Height != 80 {
		t.Errorf("tile size = %dx%d, want 100x80", records[0].Width, records[0].Height)
	}
	if records[0].Index != 1 {
		t.Errorf("tile index = %d, want 1", records[0].Index)
	}
}

func TestTileRasterInvalidOptions(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.tif")
	createTestRaster(t, srcPath, 10, 10, []float64{1}, nil)

	if _, err := TileRaster(srcPath, filepath.Join(dir, "bad"), &TileOptions{TileWidth: 0, TileHeight: 400}); err == nil {
		t.Error("TileRaster with zero tile width returned nil error")
	}
	if _, err := TileRaster(srcPath, filepath.Join(dir, "bad"), &TileOptions{TileWidth: 400, TileHeight: 400, PixelType: PixelType(99)}); err == nil {
		t.Error("TileRaster with unknown pixel type returned nil error")
	}
}

func TestWriteTileIndex(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.tif")
	gt := [6]float64{0, 1, 0, 1000, 0, -1}
	createTestRaster(t, srcPath, 1000, 1000, []float64{1}, &gt)

	records, err := TileRaster(srcPath, filepath.Join(dir, "idx"), &TileOptions{TileWidth: 400, TileHeight: 400, PixelType: PixelFloat32})
	if err != nil {
		t.Fatalf("TileRaster returned error: %v", err)
	}

	indexPath := filepath.Join(dir, "tiles.geojson")
	if err := WriteTileIndex(records, indexPath); err != nil {
		t.Fatalf("WriteTileIndex returned error: %v", err)
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("failed to read index file: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("index file is not valid GeoJSON: %v", err)
	}
	if len(fc.Features) != 9 {
		t.Fatalf("index feature count = %d, want 9", len(fc.Features))
	}

	first := fc.Features[0]
	if first.Geometry == nil {
		t.Fatal("index feature has no geometry")
	}
	for _, key := range []string{"index", "path", "offset_x", "offset_y", "width", "height", "skipped"} {
		if _, ok := first.Properties[key]; !ok {
			t.Errorf("index feature missing property %q", key)
		}
	}
}
