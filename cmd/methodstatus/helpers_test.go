package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testConfig maps the attribute keys to the short names used in testSnapshot.
const testConfig = `release: R1
language: en
attributes:
  status: STATUS
  releasedStatus: RELSTATUS
  release: RELEASE
  classification: CLASS
  maturity: MAT
  sixtyDays: SIXTY
`

// testSnapshot has an in-release solution with one released work package
// fed by asset A1, whose released status is filled in by writeSnapshot,
// and one solution of another release.
const testSnapshot = `
selected: [S1, S2]
elements:
  - id: S1
    type: OT_SOLUTION
    attributes:
      AT_NAME: {en: Billing}
      RELEASE: {en: R1}
      STATUS: {en: active}
      MAT: {en: high}
    assigned: [V1]
  - id: S2
    type: OT_SOLUTION
    attributes:
      AT_NAME: {en: Archive}
      RELEASE: {en: R0}
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
      RELSTATUS: {en: ASSET_STATUS}
connections:
  - {kind: CT_PROV_INP_FOR, source: A1, target: F1}
`

// writeConfig writes testConfig into dir and returns its path.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "methodstatus.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// writeSnapshot writes testSnapshot with the given asset status.
func writeSnapshot(t *testing.T, dir, name, assetStatus string) string {
	t.Helper()

	content := strings.Replace(testSnapshot, "ASSET_STATUS", assetStatus, 1)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}
	return path
}
