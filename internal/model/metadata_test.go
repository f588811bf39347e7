package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCheckoutMetadata_RoundTripKeepsContactFields(t *testing.T) {
	in := CheckoutMetadata{WorkshopDateID: 42, Quantity: 3, FirstName: "Ada", LastName: "Lovelace", Phone: "0161", Company: ""}

	out, err := DecodeCheckoutMetadata(in.Encode())
	require.NoError(t, err)
	assert.Equal(t, CheckoutMetadataVersion, out.Version)
	assert.Equal(t, uint64(42), out.WorkshopDateID)
	assert.Equal(t, 3, out.Quantity)
	assert.Equal(t, "Ada", out.FirstName)
	assert.Equal(t, "", out.Company)
}

func TestDecodeCheckoutMetadata_UnversionedDefaultsToV1(t *testing.T) {
	out, err := DecodeCheckoutMetadata(map[string]string{"workshopDateId": "7"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Quantity)
	assert.Equal(t, uint64(7), out.WorkshopDateID)
}

func TestDecodeCheckoutMetadata_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"future version":  {"v": "2", "workshopDateId": "7", "quantity": "1"},
		"missing date":    {"quantity": "1"},
		"zero date":       {"workshopDateId": "0"},
		"bad quantity":    {"workshopDateId": "7", "quantity": "two"},
		"zero quantity":   {"workshopDateId": "7", "quantity": "0"},
		"negative amount": {"workshopDateId": "7", "quantity": "-4"},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCheckoutMetadata(raw)
			assert.Error(t, err)
		})
	}

	_, err := DecodeCheckoutMetadata(cases["future version"])
	assert.ErrorIs(t, err, ErrUnsupportedMetadata)
}

func TestWorkshopDate_DisplayTime(t *testing.T) {
	d := WorkshopDate{TimeStart: "09:00:00", TimeEnd: "13:00:00"}
	assert.Equal(t, "09:00 - 13:00", d.DisplayTime())

	d.TimeEnd = ""
	assert.Equal(t, "09:00", d.DisplayTime())
}
