package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/methodstatus/internal/aggregate"
	"github.com/nao1215/methodstatus/internal/model"
	"golang.org/x/text/language"
)

// snapshotYAML has one in-release solution with one released work package
// and one open asset.
const snapshotYAML = `
selected: [S1]
elements:
  - id: S1
    type: OT_SOLUTION
    attributes:
      AT_NAME: {en: Billing}
      RELEASE: {en: R1}
    assigned: [V1]
  - id: V1
    type: MT_VAL_ADD_CHN_DGM
    objects: [W1]
  - id: W1
    type: OT_FUNC
    attributes:
      CLASS: {en: Work Package}
      RELEASE: {en: R1}
      RELSTATUS: {en: released}
    assigned: [E1]
  - id: E1
    type: MT_EEPC
    objects: [F1]
  - id: F1
    type: OT_FUNC
  - id: A1
    type: OT_INFO_CARR
    attributes:
      CLASS: {en: Asset}
      RELEASE: {en: R1}
connections:
  - {kind: CT_PROV_INP_FOR, source: A1, target: F1}
`

// writeSnapshot writes snapshotYAML into dir and returns its path.
func writeSnapshot(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(snapshotYAML), 0600); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}
	return path
}

// newTestAggregator returns an aggregator reading the snapshotYAML keys.
func newTestAggregator(t *testing.T) *aggregate.Aggregator {
	t.Helper()

	a, err := aggregate.New(aggregate.RunConfig{
		Release:  "R1",
		Language: language.English,
		Kinds: aggregate.Kinds{
			Identifier:     model.AttributeIdentifier,
			Name:           model.AttributeName,
			Status:         "STATUS",
			ReleasedStatus: "RELSTATUS",
			Release:        "RELEASE",
			Classification: "CLASS",
			Maturity:       "MAT",
			SixtyDays:      "SIXTY",
		},
	})
	if err != nil {
		t.Fatalf("failed to create aggregator: %v", err)
	}
	return a
}
