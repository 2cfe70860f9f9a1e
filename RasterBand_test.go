package GeoSat

import (
	"errors"
	"testing"

	"github.com/airbusgeo/godal"
)

func TestParsePixelType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PixelType
		wantErr bool
	}{
		{name: "float32", input: "Float32", want: PixelFloat32},
		{name: "float64", input: "Float64", want: PixelFloat64},
		{name: "uint16", input: "UInt16", want: PixelUInt16},
		{name: "byte", input: "Byte", want: PixelByte},
		{name: "empty defaults to float32", input: "", want: PixelFloat32},
		{name: "unknown type", input: "Int32", wantErr: true},
		{name: "garbage", input: "float thirty two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePixelType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePixelType(%q) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrUnsupportedPixelType) {
					t.Errorf("error = %v, want ErrUnsupportedPixelType in chain", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePixelType(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePixelType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPixelTypeGDALType(t *testing.T) {
	tests := []struct {
		pt   PixelType
		want godal.DataType
	}{
		{PixelFloat32, godal.Float32},
		{PixelFloat64, godal.Float64},
		{PixelUInt16, godal.UInt16},
		{PixelByte, godal.Byte},
	}

	for _, tt := range tests {
		got, err := tt.pt.GDALType()
		if err != nil {
			t.Errorf("%v.GDALType() returned error: %v", tt.pt, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%v.GDALType() = %v, want %v", tt.pt, got, tt.want)
		}
	}

	if _, err := PixelType(99).GDALType(); !errors.Is(err, ErrUnsupportedPixelType) {
		t.Errorf("PixelType(99).GDALType() error = %v, want ErrUnsupportedPixelType in chain", err)
	}
}

func TestPixelTypeString(t *testing.T) {
	tests := []struct {
		pt   PixelType
		want string
	}{
		{PixelFloat32, "Float32"},
		{PixelFloat64, "Float64"},
		{PixelUInt16, "UInt16"},
		{PixelByte, "Byte"},
	}

	for _, tt := range tests {
		if got := tt.pt.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.pt), got, tt.want)
		}
	}
}

func TestPixelTypeBytesPerPixel(t *testing.T) {
	tests := []struct {
		pt   PixelType
		want int
	}{
		{PixelFloat32, 4},
		{PixelFloat64, 8},
		{PixelUInt16, 2},
		{PixelByte, 1},
	}

	for _, tt := range tests {
		if got := tt.pt.BytesPerPixel(); got != tt.want {
			t.Errorf("%v.BytesPerPixel() = %d, want %d", tt.pt, got, tt.want)
		}
	}
}

func TestPixelTypeValid(t *testing.T) {
	if !PixelFloat32.Valid() {
		t.Error("PixelFloat32.Valid() = false, want true")
	}
	if PixelType(42).Valid() {
		t.Error("PixelType(42).Valid() = true, want false")
	}
}

func TestDefaultPixelType(t *testing.T) {
	if DefaultPixelType != PixelFloat32 {
		t.Errorf("DefaultPixelType = %v, want PixelFloat32", DefaultPixelType)
	}
	var zero PixelType
	if zero != PixelFloat32 {
		t.Errorf("zero value PixelType = %v, want PixelFloat32", zero)
	}
}
