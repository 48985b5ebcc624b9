package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{name: "simple address", email: "joao@gmail.com", valid: true},
		{name: "dotted local part", email: "john.doe@example.com", valid: true},
		{name: "plus tag", email: "john+test@example.co", valid: true},
		{name: "quoted local part", email: `"john doe"@example.com`, valid: true},
		{name: "ipv4 literal", email: "root@[192.168.0.1]", valid: true},
		{name: "subdomain", email: "a@mail.example.org", valid: true},
		{name: "no at sign", email: "elton", valid: false},
		{name: "empty", email: "", valid: false},
		{name: "no domain dot", email: "elton@localhost", valid: false},
		{name: "single letter tld", email: "elton@example.c", valid: false},
		{name: "leading dot in local part", email: ".elton@example.com", valid: false},
		{name: "double dot in local part", email: "el..ton@example.com", valid: false},
		{name: "space in local part", email: "el ton@example.com", valid: false},
		{name: "two at signs", email: "a@b@example.com", valid: false},
		{name: "numeric tld", email: "a@example.123", valid: false},
		{name: "vertical tab in local part", email: "a\vb@example.com", valid: false},
		{name: "no-break space in local part", email: "a\u00a0b@example.com", valid: false},
		{name: "em space in local part", email: "a\u2003b@example.com", valid: false},
		{name: "line separator in local part", email: "a\u2028b@example.com", valid: false},
		{name: "ideographic space in local part", email: "a\u3000b@example.com", valid: false},
		{name: "byte order mark in local part", email: "a\ufeffb@example.com", valid: false},
		{name: "no-break space after dot", email: "a.\u00a0b@example.com", valid: false},
		{name: "non-ascii letters in local part", email: "jo\u00e3o@example.com", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsEmail(tt.email))
		})
	}
}

func TestNew_ReportsJSONFieldNames(t *testing.T) {
	type payload struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,useremail"`
	}

	v := New()

	err := v.Struct(payload{Email: "elton"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)

	assert.Equal(t, "name", verrs[0].Field())
	assert.Equal(t, "required", verrs[0].Tag())
	assert.Equal(t, "email", verrs[1].Field())
	assert.Equal(t, EmailTag, verrs[1].Tag())
}

func TestNew_RequiredGatesEmailFormat(t *testing.T) {
	v := New()

	err := v.Var("", "required,"+EmailTag)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "required", verrs[0].Tag())

	assert.NoError(t, v.Var("joao@gmail.com", "required,"+EmailTag))
}
