package validator

import (
	"strings"
	"testing"
	"time"

	"buslane/pkg/logger"
	"buslane/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func validFilter() *model.SearchFilter {
	return &model.SearchFilter{
		OriginID:      "507f1f77bcf86cd799439011",
		DestinationID: "507f1f77bcf86cd799439012",
		StartTime:     time.Now().Add(24 * time.Hour),
		EndTime:       time.Now().Add(26 * time.Hour),
		MinSeats:      2,
		MinPrice:      10,
		MaxPrice:      50,
		SortBy:        model.SortByRating,
		SortOrder:     model.SortDesc,
	}
}

func TestFilterValidator(t *testing.T) {
	v := NewFilterValidator(testLogger())

	tests := []struct {
		name      string
		mutate    func(f *model.SearchFilter)
		wantField string
	}{
		{
			name:   "valid filter",
			mutate: func(f *model.SearchFilter) {},
		},
		{
			name:      "missing origin",
			mutate:    func(f *model.SearchFilter) { f.OriginID = "" },
			wantField: "OriginID",
		},
		{
			name:      "origin not an object id",
			mutate:    func(f *model.SearchFilter) { f.OriginID = "not-an-id" },
			wantField: "OriginID",
		},
		{
			name:      "start in the past",
			mutate:    func(f *model.SearchFilter) { f.StartTime = time.Now().Add(-time.Hour) },
			wantField: "StartTime",
		},
		{
			name: "end not after start",
			mutate: func(f *model.SearchFilter) {
				f.EndTime = f.StartTime
			},
			wantField: "EndTime",
		},
		{
			name:      "zero seats",
			mutate:    func(f *model.SearchFilter) { f.MinSeats = 0 },
			wantField: "MinSeats",
		},
		{
			name:      "negative min price",
			mutate:    func(f *model.SearchFilter) { f.MinPrice = -1 },
			wantField: "MinPrice",
		},
		{
			name: "max price below min price",
			mutate: func(f *model.SearchFilter) {
				f.MinPrice = 50
				f.MaxPrice = 10
			},
			wantField: "MaxPrice",
		},
		{
			name:      "unknown sort key",
			mutate:    func(f *model.SearchFilter) { f.SortBy = "distance" },
			wantField: "SortBy",
		},
		{
			name:      "unknown sort order",
			mutate:    func(f *model.SearchFilter) { f.SortOrder = "sideways" },
			wantField: "SortOrder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := validFilter()
			tt.mutate(filter)

			err := v.Validate(filter)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid filter, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected violation on %s, got nil", tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("expected %s in error, got %v", tt.wantField, err)
			}
		})
	}
}

func TestFilterValidator_ReportsAllViolationsTogether(t *testing.T) {
	v := NewFilterValidator(testLogger())

	filter := validFilter()
	filter.OriginID = ""
	filter.MinSeats = 0
	filter.StartTime = time.Now().Add(-time.Hour)

	err := v.Validate(filter)
	if err == nil {
		t.Fatal("expected validation error")
	}

	valErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	details := valErrs.Details()
	for _, field := range []string{"OriginID", "MinSeats", "StartTime"} {
		if _, present := details[field]; !present {
			t.Errorf("expected %s in details, got %v", field, details)
		}
	}
}
