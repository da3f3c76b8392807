// Package station implements the control core of the surveillance
// station: the module arming state machine, camera multiplexing, the
// restricted-area drawing protocol and the presenters that derive the
// operator panels. All server communication goes through the api client;
// the server is the authority for every mutation.
package station

// Module is a named detection capability. At most one module is selected
// and at most one is armed at a time, and the armed module always equals
// the selected one.
type Module int

const (
	// ModuleNone means no module is selected.
	ModuleNone Module = iota
	// ModuleUnsafeActions recognizes unsafe worker movement.
	ModuleUnsafeActions
	// ModuleTemperature reads the fixed thermal camera. Arming it pins
	// the view to camera 2.
	ModuleTemperature
	// ModulePPE checks personal protective equipment compliance.
	ModulePPE
	// ModuleRestrictedAreas watches the drawn restricted-area rectangles.
	ModuleRestrictedAreas
)

// wire names are the fixed enumeration the server understands.
var moduleWireNames = map[Module]string{
	ModuleUnsafeActions:   "Acciones Inseguras",
	ModuleTemperature:     "Temperatura",
	ModulePPE:             "EPP's",
	ModuleRestrictedAreas: "Áreas Restringidas",
}

// WireName returns the server-side name of the module, or "" for ModuleNone.
func (m Module) WireName() string {
	return moduleWireNames[m]
}

func (m Module) String() string {
	switch m {
	case ModuleNone:
		return "none"
	case ModuleUnsafeActions:
		return "unsafe-actions"
	case ModuleTemperature:
		return "temperature"
	case ModulePPE:
		return "ppe"
	case ModuleRestrictedAreas:
		return "restricted-areas"
	default:
		return "unknown"
	}
}

// ModuleFromWireName maps a server-side module name back to its Module.
func ModuleFromWireName(name string) (Module, bool) {
	for m, wire := range moduleWireNames {
		if wire == name {
			return m, true
		}
	}
	return ModuleNone, false
}

// Modules lists the selectable modules in display order.
func Modules() []Module {
	return []Module{ModuleUnsafeActions, ModuleTemperature, ModulePPE, ModuleRestrictedAreas}
}

// PPEClass is one of the fixed protective-equipment detection classes.
type PPEClass int

const (
	ClassHelmet PPEClass = iota
	ClassGlasses
	ClassMask
	ClassEarProtection
	ClassGloves
	ClassBoots
	ClassLaminator
	ClassPerson
)

var ppeWireNames = map[PPEClass]string{
	ClassHelmet:        "Casco",
	ClassGlasses:       "Gafas",
	ClassMask:          "Tapabocas",
	ClassEarProtection: "Protector auditivo",
	ClassGloves:        "Guantes",
	ClassBoots:         "Botas",
	ClassLaminator:     "Laminadora",
	ClassPerson:        "Persona",
}

// WireName returns the server-side class name, e.g. "Protector auditivo".
func (c PPEClass) WireName() string {
	return ppeWireNames[c]
}

// PPEClasses lists all protective-equipment classes in display order.
func PPEClasses() []PPEClass {
	return []PPEClass{
		ClassHelmet, ClassGlasses, ClassMask, ClassEarProtection,
		ClassGloves, ClassBoots, ClassLaminator, ClassPerson,
	}
}

// Option labels for the modules without a class enumeration.
var (
	// UnsafeActionLabels are the recognized unsafe movement patterns.
	UnsafeActionLabels = []string{"Entró saltando", "Se cayó", "Pasó corriendo"}
	// TemperatureLabels are the thermal state readings.
	TemperatureLabels = []string{"Calor", "Estable", "Frío"}
)

// AreaSlot is one of the two fixed restricted-area rectangle identifiers
// per camera.
type AreaSlot int

const (
	AreaSlot1 AreaSlot = 1
	AreaSlot2 AreaSlot = 2
)

// AreaSlots lists the valid slots.
func AreaSlots() []AreaSlot {
	return []AreaSlot{AreaSlot1, AreaSlot2}
}
