package grpc

import (
	"encoding/base64"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gnuhannes/my-private-finances/internal/domain"
	"github.com/gnuhannes/my-private-finances/internal/usecase/importer"
	"github.com/gnuhannes/my-private-finances/internal/usecase/recurring"
)

const dateLayout = "2006-01-02"

// request wraps an incoming Struct with typed accessors.
type request struct {
	fields map[string]*structpb.Value
}

func newRequest(in *structpb.Struct) request {
	return request{fields: in.GetFields()}
}

func (r request) has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

func (r request) str(key string) string {
	return r.fields[key].GetStringValue()
}

func (r request) boolPtr(key string) *bool {
	v, ok := r.fields[key]
	if !ok {
		return nil
	}
	b := v.GetBoolValue()
	return &b
}

func (r request) strPtr(key string) *string {
	if !r.has(key) {
		return nil
	}
	v := r.str(key)
	return &v
}

func (r request) name() (string, error) {
	name := r.str("name")
	if name == "" {
		return "", fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	return name, nil
}

func (r request) number(key string) int {
	return int(r.fields[key].GetNumberValue())
}

func (r request) id(key string) (uuid.UUID, error) {
	raw := r.str(key)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required: %w", key, domain.ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s format: %w", key, domain.ErrValidation)
	}
	return id, nil
}

func (r request) ids(key string) ([]uuid.UUID, error) {
	values := r.fields[key].GetListValue().GetValues()
	ids := make([]uuid.UUID, 0, len(values))
	for i, v := range values {
		id, err := uuid.Parse(v.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("invalid %s[%d] format: %w", key, i, domain.ErrValidation)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// content returns the file payload, given either as text in "content" or
// as standard base64 in "content_base64".
func (r request) content() ([]byte, error) {
	if r.has("content_base64") {
		b, err := base64.StdEncoding.DecodeString(r.str("content_base64"))
		if err != nil {
			return nil, fmt.Errorf("invalid content_base64: %w", domain.ErrValidation)
		}
		return b, nil
	}
	if !r.has("content") {
		return nil, fmt.Errorf("content is required: %w", domain.ErrValidation)
	}
	return []byte(r.str("content")), nil
}

// localeOverride collects delimiter, date_format and decimal_comma. Each one
// present replaces the matching field of the profile or default locale.
func (r request) localeOverride() (domain.LocaleOverride, error) {
	var o domain.LocaleOverride
	if r.has("delimiter") {
		delim := r.str("delimiter")
		if utf8.RuneCountInString(delim) != 1 {
			return o, fmt.Errorf("delimiter must be a single character: %w", domain.ErrValidation)
		}
		d, _ := utf8.DecodeRuneInString(delim)
		o.Delimiter = &d
	}
	if r.has("date_format") {
		f := domain.DateFormat(r.str("date_format"))
		o.DateFormat = &f
	}
	o.DecimalComma = r.boolPtr("decimal_comma")
	return o, nil
}

// columnMap decodes column_map, an object of canonical field names to lists
// of header aliases.
func (r request) columnMap() (map[string][]string, error) {
	fields := r.fields["column_map"].GetStructValue().GetFields()
	if len(fields) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(fields))
	for field, v := range fields {
		list, ok := v.GetKind().(*structpb.Value_ListValue)
		if !ok {
			return nil, fmt.Errorf("column_map.%s must be a list of headers: %w", field, domain.ErrValidation)
		}
		for _, alias := range list.ListValue.GetValues() {
			h, ok := alias.GetKind().(*structpb.Value_StringValue)
			if !ok || h.StringValue == "" {
				return nil, fmt.Errorf("column_map.%s must only hold header names: %w", field, domain.ErrValidation)
			}
			out[field] = append(out[field], h.StringValue)
		}
	}
	return out, nil
}

func importResult(res *importer.Result) map[string]interface{} {
	errs := make([]interface{}, 0, len(res.Errors))
	for _, e := range res.Errors {
		errs = append(errs, e)
	}
	return map[string]interface{}{
		"total_rows": res.TotalRows,
		"created":    res.Created,
		"duplicates": res.Duplicates,
		"failed":     res.Failed,
		"errors":     errs,
	}
}

func transferCandidate(c *domain.TransferCandidate) map[string]interface{} {
	return map[string]interface{}{
		"id":                  c.ID.String(),
		"from_transaction_id": c.FromTransactionID.String(),
		"to_transaction_id":   c.ToTransactionID.String(),
		"confidence":          c.Confidence.StringFixed(2),
		"status":              string(c.Status),
		"created_at":          c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func transferCandidates(cs []*domain.TransferCandidate) []interface{} {
	out := make([]interface{}, 0, len(cs))
	for _, c := range cs {
		out = append(out, transferCandidate(c))
	}
	return out
}

func recurringPattern(p *domain.RecurringPattern) map[string]interface{} {
	m := map[string]interface{}{
		"id":               p.ID.String(),
		"account_id":       p.AccountID.String(),
		"payee":            p.Payee,
		"typical_amount":   p.TypicalAmount.StringFixed(2),
		"frequency":        string(p.Frequency),
		"confidence":       p.Confidence.StringFixed(2),
		"last_seen":        p.LastSeen.Format(dateLayout),
		"occurrence_count": p.OccurrenceCount,
		"is_active":        p.IsActive,
		"user_confirmed":   p.UserConfirmed,
		"category_id":      nil,
	}
	if p.CategoryID != nil {
		m["category_id"] = p.CategoryID.String()
	}
	return m
}

func recurringPatterns(ps []*domain.RecurringPattern) []interface{} {
	out := make([]interface{}, 0, len(ps))
	for _, p := range ps {
		out = append(out, recurringPattern(p))
	}
	return out
}

func recurringSummary(s *recurring.Summary) map[string]interface{} {
	byFreq := make([]interface{}, 0, len(s.ByFrequency))
	for _, f := range s.ByFrequency {
		byFreq = append(byFreq, map[string]interface{}{
			"frequency": string(f.Frequency),
			"count":     f.Count,
			"total":     f.Total.StringFixed(2),
		})
	}
	return map[string]interface{}{
		"account_id":              s.AccountID.String(),
		"total_monthly_recurring": s.TotalMonthlyRecurring.StringFixed(2),
		"pattern_count":           s.PatternCount,
		"by_frequency":            byFreq,
	}
}

func categorizationRule(r *domain.CategorizationRule) map[string]interface{} {
	return map[string]interface{}{
		"id":          r.ID.String(),
		"position":    r.Position,
		"field":       string(r.Field),
		"operator":    string(r.Operator),
		"value":       r.Value,
		"category_id": r.CategoryID.String(),
	}
}

func categorizationRules(rs []*domain.CategorizationRule) []interface{} {
	out := make([]interface{}, 0, len(rs))
	for _, r := range rs {
		out = append(out, categorizationRule(r))
	}
	return out
}

func csvProfile(p *domain.CsvProfile) map[string]interface{} {
	columns := make(map[string]interface{}, len(p.Locale.ColumnMap))
	for field, aliases := range p.Locale.ColumnMap {
		list := make([]interface{}, 0, len(aliases))
		for _, a := range aliases {
			list = append(list, a)
		}
		columns[field] = list
	}
	return map[string]interface{}{
		"id":            p.ID.String(),
		"name":          p.Name,
		"delimiter":     string(p.Locale.Delimiter),
		"date_format":   string(p.Locale.DateFormat),
		"decimal_comma": p.Locale.DecimalComma,
		"column_map":    columns,
	}
}
