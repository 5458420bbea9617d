// Package plan mints confirm tokens for a batch of findings, producing a
// view the caller can inspect before committing to a delete. The plan
// itself is not persisted; it is entirely reconstructible from the tokens
// it hands back.
package plan

import (
	"time"

	"github.com/nullout-io/nullout/pkg/encoding"
	"github.com/nullout-io/nullout/pkg/nullerrors"
	"github.com/nullout-io/nullout/pkg/nullstore"
	"github.com/nullout-io/nullout/pkg/token"
)

// actionDelete is the only action requestedActions may contain in v1.
const actionDelete = "DELETE"

// Entry is a single planned deletion: a finding, its minted token, and the
// bindings the token carries, echoed back for human review.
type Entry struct {
	FindingID    string            `json:"findingId"`
	Action       string            `json:"action"`
	Strategy     string            `json:"strategy"`
	ConfirmToken string            `json:"confirmToken"`
	Bindings     map[string]string `json:"bindings"`
	RiskNotes    []string          `json:"riskNotes"`
}

// Result is the outcome of a successful plan.
type Result struct {
	PlanID     string    `json:"planId"`
	ExpiresUTC time.Time `json:"expiresUtc"`
	Entries    []Entry   `json:"entries"`
}

// Create mints a token for every finding in findingIDs. If requestedActions
// does not contain "DELETE", or if any finding id is unknown, the whole
// plan fails atomically and no tokens are minted.
func Create(store *nullstore.Store, findingIDs []string, requestedActions []string, secret []byte) (Result, error) {
	if !contains(requestedActions, actionDelete) {
		return Result{}, nullerrors.New(nullerrors.EInvalidRequest, "only DELETE is supported", nil)
	}

	findings := make([]nullstore.Finding, 0, len(findingIDs))
	for _, id := range findingIDs {
		finding, ok := store.Finding(id)
		if !ok {
			return Result{}, nullerrors.New(nullerrors.ENotFound, "finding not found", map[string]any{"findingId": id})
		}
		findings = append(findings, finding)
	}

	exp := time.Now().Add(token.TTL)
	entries := make([]Entry, 0, len(findings))

	for _, finding := range findings {
		var volumeSerial, fileID string
		if finding.Evidence.Identity != nil {
			volumeSerial = finding.Evidence.Identity.VolumeSerial
			fileID = finding.Evidence.Identity.FileID
		}

		payload := token.Payload{
			FindingID:     finding.FindingID,
			RootID:        finding.RootID,
			ScanID:        finding.ScanID,
			VolumeSerial:  volumeSerial,
			FileID:        fileID,
			Strategy:      token.Strategy,
			ReparsePolicy: token.ReparsePolicy,
			Exp:           exp.Unix(),
		}

		minted, err := token.Mint(payload, secret)
		if err != nil {
			return Result{}, nullerrors.Wrap(err, nullerrors.EInternal, "unable to mint confirm token", nil)
		}

		entries = append(entries, Entry{
			FindingID:    finding.FindingID,
			Action:       actionDelete,
			Strategy:     token.Strategy,
			ConfirmToken: minted,
			Bindings: map[string]string{
				"rootId":        payload.RootID,
				"scanId":        payload.ScanID,
				"volumeSerial":  payload.VolumeSerial,
				"fileId":        payload.FileID,
				"strategy":      payload.Strategy,
				"reparsePolicy": payload.ReparsePolicy,
			},
			RiskNotes: []string{
				"Windows reserved-name or Win32-hostile entry; delete will use the extended path namespace.",
			},
		})
	}

	return Result{
		PlanID:     encoding.NewID("plan"),
		ExpiresUTC: exp.UTC(),
		Entries:    entries,
	}, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
