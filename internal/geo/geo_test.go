package geo

import (
	"testing"

	"github.com/rallypoint/rallypoint/internal/model"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		a, b      model.Location
		want      float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         model.Location{Lat: 49.26, Lon: -123.25},
			b:         model.Location{Lat: 49.26, Lon: -123.25},
			want:      0,
			tolerance: 0.001,
		},
		{
			// Roughly 111 km per degree of latitude.
			name:      "one degree latitude",
			a:         model.Location{Lat: 0, Lon: 0},
			b:         model.Location{Lat: 1, Lon: 0},
			want:      111195,
			tolerance: 100,
		},
		{
			name:      "short hop",
			a:         model.Location{Lat: 49.2606, Lon: -123.2460},
			b:         model.Location{Lat: 49.2696, Lon: -123.2460},
			want:      1000.7,
			tolerance: 5,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Distance(tt.a, tt.b)
			if diff := got - tt.want; diff < -tt.tolerance || diff > tt.tolerance {
				t.Errorf("Distance() = %f, want %f ± %f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestWithinRadius(t *testing.T) {
	t.Parallel()

	center := model.Location{Lat: 49.2606, Lon: -123.2460}

	tests := []struct {
		name   string
		point  model.Location
		meters float64
		want   bool
	}{
		{"same point", center, DiscoveryRadiusMeters, true},
		{"inside radius", model.Location{Lat: 49.2696, Lon: -123.2460}, DiscoveryRadiusMeters, true},
		{"outside radius", model.Location{Lat: 49.2806, Lon: -123.2460}, DiscoveryRadiusMeters, false},
		{"far away", model.Location{Lat: 50.0, Lon: -123.2460}, DiscoveryRadiusMeters, false},
		{"zero radius excludes neighbors", model.Location{Lat: 49.2607, Lon: -123.2460}, 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := WithinRadius(center, tt.point, tt.meters); got != tt.want {
				t.Errorf("WithinRadius() = %v, want %v", got, tt.want)
			}
		})
	}
}
