// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FetchStatus indicates the outcome of retrieving a compound's full record.
type FetchStatus string

const (
	FetchDone     FetchStatus = "fetched"
	FetchSkipped  FetchStatus = "skipped"
	FetchNotFound FetchStatus = "not_found"
	FetchFailed   FetchStatus = "failed"
)

// Compound holds identity metadata and file paths for a fetched compound.
type Compound struct {
	// CID is the PubChem compound identifier. Zero when only a substance
	// record was found.
	CID int64 `json:"cid,omitempty" yaml:"cid,omitempty"`

	// SID is the PubChem substance identifier, set when the compound
	// search was empty and the substance domain resolved instead.
	SID int64 `json:"sid,omitempty" yaml:"sid,omitempty"`

	// Identifier is the input the compound was resolved from
	// (a CID, CAS registry number, or name).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Name is the compound name from the input list, if any.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// CAS is the CAS registry number from the input list, if any.
	CAS string `json:"cas,omitempty" yaml:"cas,omitempty"`

	// RecordTitle is the title the fetched record declares.
	RecordTitle string `json:"record_title,omitempty" yaml:"record_title,omitempty"`

	// RecordPath is the local path of the downloaded full record JSON.
	RecordPath string `json:"record_path,omitempty" yaml:"record_path,omitempty"`

	// Status tracks the fetch outcome.
	Status FetchStatus `json:"status" yaml:"status"`
}

// RecordID returns the identifier under which the record is stored:
// the CID, or the SID for substance-only compounds.
func (c Compound) RecordID() int64 {
	if c.CID != 0 {
		return c.CID
	}
	return c.SID
}
