package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCsvProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile CsvProfile
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid german profile",
			profile: CsvProfile{Name: "sparkasse", Locale: LocaleConfig{Delimiter: ';', DateFormat: DateFormatDMY, DecimalComma: true}},
		},
		{
			name:    "default locale",
			profile: CsvProfile{Name: "generic", Locale: DefaultLocale()},
		},
		{
			name:    "empty name",
			profile: CsvProfile{Locale: DefaultLocale()},
			wantErr: true,
			errMsg:  "name cannot be empty",
		},
		{
			name:    "missing delimiter",
			profile: CsvProfile{Name: "x", Locale: LocaleConfig{DateFormat: DateFormatISO}},
			wantErr: true,
			errMsg:  "delimiter",
		},
		{
			name:    "quote delimiter",
			profile: CsvProfile{Name: "x", Locale: LocaleConfig{Delimiter: '"', DateFormat: DateFormatISO}},
			wantErr: true,
			errMsg:  "delimiter",
		},
		{
			name:    "unknown date format",
			profile: CsvProfile{Name: "x", Locale: LocaleConfig{Delimiter: ',', DateFormat: "mdy"}},
			wantErr: true,
			errMsg:  "date format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocaleOverride_Apply(t *testing.T) {
	semicolon := ';'
	dmy := DateFormatDMY
	yes := true
	no := false
	german := LocaleConfig{Delimiter: ';', DateFormat: DateFormatDMY, DecimalComma: true}

	tests := []struct {
		name     string
		override LocaleOverride
		base     LocaleConfig
		want     LocaleConfig
	}{
		{
			name: "empty override keeps base",
			base: german,
			want: german,
		},
		{
			name:     "date format only keeps default delimiter",
			override: LocaleOverride{DateFormat: &dmy, DecimalComma: &yes},
			base:     DefaultLocale(),
			want:     LocaleConfig{Delimiter: ',', DateFormat: DateFormatDMY, DecimalComma: true},
		},
		{
			name:     "single field on a profile",
			override: LocaleOverride{DecimalComma: &no},
			base:     german,
			want:     LocaleConfig{Delimiter: ';', DateFormat: DateFormatDMY},
		},
		{
			name:     "delimiter",
			override: LocaleOverride{Delimiter: &semicolon},
			base:     DefaultLocale(),
			want:     LocaleConfig{Delimiter: ';', DateFormat: DateFormatISO},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.override.IsZero(), tt.override == LocaleOverride{})
			assert.Equal(t, tt.want, tt.override.Apply(tt.base))
		})
	}
}
