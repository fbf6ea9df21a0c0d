package models

// Namespace names an independent monotonic id counter. Regular creation
// workflows allocate from NamespaceResource; EPG-linked copies allocate from
// NamespaceResourceEPG. The counters live in disjoint rows and advance
// independently of each other.
type Namespace string

// Sequence namespace constants.
const (
	NamespaceResource    Namespace = "resource"
	NamespaceResourceEPG Namespace = "resource-epg"
)

// EPGSequenceBase is the seed value of the EPG namespace counter. Both
// namespaces allocate ids into the same resources table, so the EPG range
// starts far above anything the regular counter can plausibly reach.
const EPGSequenceBase uint64 = 1 << 32

// Namespaces returns all sequence namespaces that must be seeded.
func Namespaces() []Namespace {
	return []Namespace{NamespaceResource, NamespaceResourceEPG}
}

// SeedValue returns the initial counter value for the namespace.
func (n Namespace) SeedValue() uint64 {
	if n == NamespaceResourceEPG {
		return EPGSequenceBase
	}
	return 0
}

// Valid reports whether the namespace is one of the seeded counters.
func (n Namespace) Valid() bool {
	switch n {
	case NamespaceResource, NamespaceResourceEPG:
		return true
	default:
		return false
	}
}

// Sequence is a per-namespace id counter row. Value is the last-assigned
// id; the next id is obtained by incrementing and reading back inside the
// same transaction that inserts the new resource row.
type Sequence struct {
	Namespace Namespace `gorm:"primarykey;size:32" json:"namespace"`
	Value     uint64    `json:"value"`
}

// TableName returns the database table name for sequence counters.
func (Sequence) TableName() string {
	return "sequences"
}
