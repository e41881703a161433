// Package repository provides an in-memory host model repository.
//
// A Graph holds elements, their attributes per language, diagram
// assignments, diagram placements and typed connections. It implements
// model.Repository, and every element it hands out implements
// model.Element, so the report core never depends on this package.
//
// Graphs are built programmatically with Add/Connect/Select or loaded from
// a YAML snapshot with Load:
//
//	selected: [S1]
//	elements:
//	  - id: S1
//	    type: OT_SOLUTION
//	    attributes:
//	      AT_NAME: {en: "Billing"}
//	    assigned: [VACD1]
//	connections:
//	  - {kind: CT_PROV_INP_FOR, source: A1, target: F1}
//
// Deleted elements stay addressable by ID but are invalid: their attributes
// read as missing and relation lookups never return them.
package repository
