// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubchem retrieves full compound records from the PubChem PUG
// APIs and converts them into the engine's document model. It is the
// retrieval collaborator: the extraction engine itself never touches
// the network.
package pubchem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/propharvest/internal/httputil"
	"github.com/pdiddy/propharvest/pkg/types"
)

// IdentifierType classifies an input identifier.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeCID
	TypeCAS
	TypeName
)

func (t IdentifierType) String() string {
	switch t {
	case TypeCID:
		return "cid"
	case TypeCAS:
		return "cas"
	case TypeName:
		return "name"
	default:
		return "unknown"
	}
}

// Base URLs for the PUG APIs. Declared as vars so tests can substitute
// httptest servers.
var (
	pugRESTBase = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"
	pugViewBase = "https://pubchem.ncbi.nlm.nih.gov/rest/pug_view/data"
)

// casPattern matches the CAS registry number format: "7732-18-5". Only
// the shape is checked; checksum validation is out of scope.
var casPattern = regexp.MustCompile(`^\d{2,7}-\d{2}-\d$`)

// cidPattern matches a bare numeric compound identifier.
var cidPattern = regexp.MustCompile(`^\d+$`)

// Classify determines the identifier type and returns the normalized
// (trimmed) form. Anything that is neither a number nor CAS-shaped is
// treated as a compound name.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)
	switch {
	case identifier == "":
		return TypeUnknown, ""
	case cidPattern.MatchString(identifier):
		return TypeCID, identifier
	case casPattern.MatchString(identifier):
		return TypeCAS, identifier
	default:
		return TypeName, identifier
	}
}

// ErrNotFound reports that no PubChem compound or substance matched an
// identifier.
var ErrNotFound = errors.New("no PubChem match")

// Resolution is the outcome of resolving an identifier: a CID when the
// compound domain matched, else a SID from the substance domain.
type Resolution struct {
	CID int64
	SID int64
}

// identifierList is the PUG REST response shape for cids/sids lookups.
type identifierList struct {
	IdentifierList struct {
		CID []int64 `json:"CID"`
		SID []int64 `json:"SID"`
	} `json:"IdentifierList"`
}

// Resolve maps a CAS number or compound name to a CID, falling back to
// the substance domain when the compound search is empty. CAS numbers
// are tried against the registry-number cross-reference first, then as
// plain names; each endpoint that 404s or returns an empty list hands
// over to the next.
func Resolve(ctx context.Context, client *http.Client, identifier string, cfg types.FetchConfig) (Resolution, error) {
	idType, normalized := Classify(identifier)

	switch idType {
	case TypeUnknown:
		return Resolution{}, fmt.Errorf("empty identifier")
	case TypeCID:
		cid, err := strconv.ParseInt(normalized, 10, 64)
		if err != nil {
			return Resolution{}, fmt.Errorf("parsing CID %q: %w", normalized, err)
		}
		return Resolution{CID: cid}, nil
	}

	quoted := url.PathEscape(normalized)

	var cidURLs, sidURLs []string
	if idType == TypeCAS {
		cidURLs = append(cidURLs, pugRESTBase+"/compound/xref/RN/"+quoted+"/cids/JSON")
	}
	cidURLs = append(cidURLs, pugRESTBase+"/compound/name/"+quoted+"/cids/JSON")
	if idType == TypeCAS {
		sidURLs = append(sidURLs, pugRESTBase+"/substance/xref/RN/"+quoted+"/sids/JSON")
	}
	sidURLs = append(sidURLs, pugRESTBase+"/substance/name/"+quoted+"/sids/JSON")

	for _, u := range cidURLs {
		ids, err := fetchIdentifierList(ctx, client, u, cfg, false)
		if err != nil {
			return Resolution{}, err
		}
		if len(ids) > 0 {
			return Resolution{CID: ids[0]}, nil
		}
	}
	for _, u := range sidURLs {
		ids, err := fetchIdentifierList(ctx, client, u, cfg, true)
		if err != nil {
			return Resolution{}, err
		}
		if len(ids) > 0 {
			return Resolution{SID: ids[0]}, nil
		}
	}

	return Resolution{}, fmt.Errorf("%q: %w", identifier, ErrNotFound)
}

// fetchIdentifierList queries one cids/sids endpoint. A 404 means "no
// match here" and returns an empty list rather than an error.
func fetchIdentifierList(ctx context.Context, client *http.Client, reqURL string, cfg types.FetchConfig, substance bool) ([]int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubChem lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubChem lookup returned HTTP %d", resp.StatusCode)
	}

	var list identifierList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("parsing lookup response: %w", err)
	}
	if substance {
		return list.IdentifierList.SID, nil
	}
	return list.IdentifierList.CID, nil
}
