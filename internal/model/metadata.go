package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CheckoutMetadataVersion is written into every checkout session so the
// webhook side can reject payloads it does not understand.
const CheckoutMetadataVersion = "1"

// Metadata keys as stored on the processor's checkout session.
const (
	metaVersion        = "v"
	metaWorkshopDateID = "workshopDateId"
	metaQuantity       = "quantity"
	metaFirstName      = "firstName"
	metaLastName       = "lastName"
	metaPhone          = "phone"
	metaCompany        = "company"
)

// ErrUnsupportedMetadata is returned when a checkout session carries a
// metadata version this build does not know.
var ErrUnsupportedMetadata = errors.New("unsupported checkout metadata version")

// CheckoutMetadata is the booking context carried opaquely through the
// payment processor between checkout and fulfillment.
type CheckoutMetadata struct {
	Version        string
	WorkshopDateID uint64
	Quantity       int
	FirstName      string
	LastName       string
	Phone          string
	Company        string
}

// Encode flattens the metadata into the processor's string map.
func (m CheckoutMetadata) Encode() map[string]string {
	v := m.Version
	if v == "" {
		v = CheckoutMetadataVersion
	}
	return map[string]string{
		metaVersion:        v,
		metaWorkshopDateID: strconv.FormatUint(m.WorkshopDateID, 10),
		metaQuantity:       strconv.Itoa(m.Quantity),
		metaFirstName:      m.FirstName,
		metaLastName:       m.LastName,
		metaPhone:          m.Phone,
		metaCompany:        m.Company,
	}
}

// DecodeCheckoutMetadata parses the processor's string map.  Sessions
// created before versioning carry no "v" key and are read as version 1.
func DecodeCheckoutMetadata(raw map[string]string) (CheckoutMetadata, error) {
	version := raw[metaVersion]
	if version == "" {
		version = CheckoutMetadataVersion
	}
	if version != CheckoutMetadataVersion {
		return CheckoutMetadata{}, fmt.Errorf("%w: %q", ErrUnsupportedMetadata, version)
	}

	dateID, err := strconv.ParseUint(strings.TrimSpace(raw[metaWorkshopDateID]), 10, 64)
	if err != nil || dateID == 0 {
		return CheckoutMetadata{}, fmt.Errorf("invalid %s %q", metaWorkshopDateID, raw[metaWorkshopDateID])
	}

	qty := 1
	if s := strings.TrimSpace(raw[metaQuantity]); s != "" {
		qty, err = strconv.Atoi(s)
		if err != nil || qty < 1 {
			return CheckoutMetadata{}, fmt.Errorf("invalid %s %q", metaQuantity, s)
		}
	}

	return CheckoutMetadata{
		Version:        version,
		WorkshopDateID: dateID,
		Quantity:       qty,
		FirstName:      raw[metaFirstName],
		LastName:       raw[metaLastName],
		Phone:          raw[metaPhone],
		Company:        raw[metaCompany],
	}, nil
}
