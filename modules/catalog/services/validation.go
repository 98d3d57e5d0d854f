package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/pkg/constants"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

var serviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// UpdateDetails is the "update_details" member of every mutation request.
// Both values are stored in VARCHAR(255) columns.
type UpdateDetails struct {
	UpdatedBy    string `json:"updated_by" validate:"required,max=255"`
	UpdateReason string `json:"update_reason" validate:"required,max=255"`
}

// ServiceRequest is the JSON envelope accepted by the mutation endpoints.
type ServiceRequest struct {
	Services      json.RawMessage `json:"services"`
	UpdateDetails *UpdateDetails  `json:"update_details"`
}

// readOnlyFields may be echoed back in an update payload only with their current values.
var readOnlyFields = []string{
	service.FieldID,
	service.FieldSupplierID,
	service.FieldFrameworkID,
	service.FieldFrameworkName,
	service.FieldStatus,
}

// derivedFields are computed on output and silently dropped on input.
var derivedFields = []string{
	service.FieldLinks,
	service.FieldSupplierName,
	service.FieldCreatedAt,
	service.FieldUpdatedAt,
}

func IsValidServiceID(serviceID string) bool {
	return serviceIDPattern.MatchString(serviceID)
}

func validateServiceID(serviceID string) error {
	if !IsValidServiceID(serviceID) {
		return serrors.Validation("INVALID_SERVICE_ID", fmt.Sprintf("Invalid service ID supplied: %s", serviceID))
	}
	return nil
}

// ParseUpdater validates update_details and returns the trimmed updater.
func ParseUpdater(details *UpdateDetails) (service.Updater, error) {
	if details == nil {
		return service.Updater{}, serrors.Validation("INVALID_UPDATE_DETAILS", "Invalid JSON must have 'update_details' key")
	}
	trimmed := UpdateDetails{
		UpdatedBy:    strings.TrimSpace(details.UpdatedBy),
		UpdateReason: strings.TrimSpace(details.UpdateReason),
	}
	if err := constants.Validate.Struct(trimmed); err != nil {
		return service.Updater{}, serrors.Validation("INVALID_UPDATE_DETAILS", describeValidation(err))
	}
	return service.Updater{By: trimmed.UpdatedBy, Reason: trimmed.UpdateReason}, nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	var empty, tooLong []string
	for _, fe := range fieldErrs {
		name := fmt.Sprintf("'%s'", jsonFieldName(fe.Field()))
		if fe.Tag() == "max" {
			tooLong = append(tooLong, name)
			continue
		}
		empty = append(empty, name)
	}
	msgs := make([]string, 0, 2)
	if len(empty) > 0 {
		msgs = append(msgs, fmt.Sprintf("%s must be a non-empty string", strings.Join(empty, ", ")))
	}
	if len(tooLong) > 0 {
		msgs = append(msgs, fmt.Sprintf("%s must be at most 255 characters", strings.Join(tooLong, ", ")))
	}
	return strings.Join(msgs, "; ")
}

func jsonFieldName(field string) string {
	switch field {
	case "UpdatedBy":
		return "updated_by"
	case "UpdateReason":
		return "update_reason"
	default:
		return field
	}
}

// decodeServicePayload requires "services" to be a JSON object.
func decodeServicePayload(raw json.RawMessage) (service.Document, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, serrors.Validation("INVALID_JSON", "Invalid JSON must have 'services' key")
	}
	doc, err := service.DecodeDocument(raw)
	if err != nil {
		return nil, serrors.Validation("INVALID_JSON", fmt.Sprintf("Invalid JSON for 'services': %v", err))
	}
	return doc, nil
}

// checkPayloadID rejects a payload whose embedded id differs from the URL id.
func checkPayloadID(serviceID string, doc service.Document) error {
	raw, ok := doc[service.FieldID]
	if !ok {
		return nil
	}
	if scalarString(raw) != serviceID {
		return serrors.Validation("SERVICE_ID_MISMATCH", "id parameter must match id in data")
	}
	return nil
}

// sanitizePatch strips read-only fields that match the live record and the derived fields.
func sanitizePatch(live *service.Service, patch service.Document) (service.Document, error) {
	current := map[string]string{
		service.FieldID:            live.ServiceID,
		service.FieldSupplierID:    strconv.FormatInt(live.SupplierID, 10),
		service.FieldFrameworkID:   strconv.FormatInt(live.FrameworkID, 10),
		service.FieldFrameworkName: live.FrameworkName,
		service.FieldStatus:        string(live.Status),
	}
	for _, field := range readOnlyFields {
		value, ok := patch[field]
		if !ok {
			continue
		}
		if scalarString(value) != current[field] {
			return nil, serrors.Validation("READ_ONLY_FIELD", fmt.Sprintf("'%s' cannot be changed by update", field))
		}
	}
	return patch.Without(append(append([]string{}, readOnlyFields...), derivedFields...)...), nil
}

// parseSupplierID accepts a JSON number or a numeric string.
func parseSupplierID(value any) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id, err == nil
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
