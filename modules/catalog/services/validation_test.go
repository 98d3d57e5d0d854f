package services

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

func TestIsValidServiceID(t *testing.T) {
	require.True(t, IsValidServiceID("1234567890123456"))
	require.True(t, IsValidServiceID("abc-DEF-123"))
	require.False(t, IsValidServiceID(""))
	require.False(t, IsValidServiceID("has space"))
	require.False(t, IsValidServiceID("semi;colon"))
	require.False(t, IsValidServiceID(strings.Repeat("a", 65)))
}

func TestSanitizePatch_DropsMatchingReadOnlyAndDerivedFields(t *testing.T) {
	live := &service.Service{ServiceID: "S1", SupplierID: 7, FrameworkID: 3, FrameworkName: "G-Cloud 6", Status: service.StatusEnabled}
	patch := service.Document{
		"id":            "S1",
		"supplierId":    json.Number("7"),
		"frameworkId":   "3",
		"frameworkName": "G-Cloud 6",
		"status":        "enabled",
		"links":         map[string]any{},
		"supplierName":  "whatever",
		"createdAt":     "2020-01-01T00:00:00.000000Z",
		"updatedAt":     "2020-01-01T00:00:00.000000Z",
		"serviceName":   "kept",
	}

	cleaned, err := sanitizePatch(live, patch)
	require.NoError(t, err)
	require.Equal(t, service.Document{"serviceName": "kept"}, cleaned)
	require.Len(t, patch, 10)
}

func TestSanitizePatch_RejectsChangedFrameworkID(t *testing.T) {
	live := &service.Service{ServiceID: "S1", FrameworkID: 3}
	_, err := sanitizePatch(live, service.Document{"frameworkId": json.Number("4")})
	require.EqualError(t, err, "'frameworkId' cannot be changed by update")
}

func TestParseSupplierID(t *testing.T) {
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{json.Number("12"), 12, true},
		{" 12 ", 12, true},
		{float64(3), 3, true},
		{float64(3.5), 0, false},
		{json.Number("1.5"), 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := parseSupplierID(tc.in)
		require.Equal(t, tc.ok, ok, "%v", tc.in)
		if ok {
			require.Equal(t, tc.want, got)
		}
	}
}

func TestParseUpdater_Trims(t *testing.T) {
	u, err := ParseUpdater(&UpdateDetails{UpdatedBy: " joe ", UpdateReason: " fix\n"})
	require.NoError(t, err)
	require.Equal(t, service.Updater{By: "joe", Reason: "fix"}, u)

	_, err = ParseUpdater(&UpdateDetails{})
	require.EqualError(t, err, "'updated_by', 'update_reason' must be a non-empty string")
}

func TestParseUpdater_RejectsValuesLongerThanColumn(t *testing.T) {
	long := strings.Repeat("r", 300)

	_, err := ParseUpdater(&UpdateDetails{UpdatedBy: "joe", UpdateReason: long})
	svcErr, ok := serrors.As(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, svcErr.Status)
	require.Equal(t, serrors.KindValidation, svcErr.Kind)
	require.Equal(t, "'update_reason' must be at most 255 characters", svcErr.Message)

	_, err = ParseUpdater(&UpdateDetails{UpdatedBy: long, UpdateReason: ""})
	require.EqualError(t, err, "'update_reason' must be a non-empty string; 'updated_by' must be at most 255 characters")

	u, err := ParseUpdater(&UpdateDetails{UpdatedBy: "joe", UpdateReason: strings.Repeat("é", 255)})
	require.NoError(t, err)
	require.Len(t, []rune(u.Reason), 255)
}
