package costanalysis

import (
	"strings"
	"testing"
)

func TestValidateAcceptsCompleteManufacturingInput(t *testing.T) {
	res := Validate(ArchetypeManufacturing, manufacturingInput())
	if !res.OK() {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
	if res.Costs.Value("materials") != 3000 {
		t.Fatalf("materials not carried through: %+v", res.Costs.Values)
	}
}

func TestValidateRequiredFieldMissing(t *testing.T) {
	raw := manufacturingInput()
	delete(raw, "materials")
	res := Validate(ArchetypeManufacturing, raw)
	if res.OK() {
		t.Fatal("expected an error for missing materials")
	}
	if !containsError(res.Errors, "Materias primas debe ser mayor a 0") {
		t.Fatalf("missing required-field error, got %v", res.Errors)
	}
}

func TestValidateRequiredFieldZero(t *testing.T) {
	raw := manufacturingInput()
	raw["labor"] = 0.0
	res := Validate(ArchetypeManufacturing, raw)
	if !containsError(res.Errors, "Mano de obra debe ser mayor a 0") {
		t.Fatalf("expected required>0 error, got %v", res.Errors)
	}
}

func TestValidateNegativeOptionalField(t *testing.T) {
	raw := manufacturingInput()
	raw["packaging"] = -50.0
	res := Validate(ArchetypeManufacturing, raw)
	if !containsError(res.Errors, "Empaque y embalaje no puede ser negativo") {
		t.Fatalf("expected negative-value error, got %v", res.Errors)
	}
}

func TestValidatePercentRange(t *testing.T) {
	raw := resaleInput()
	raw["desiredMarginPct"] = 250.0
	res := Validate(ArchetypeResale, raw)
	if !containsError(res.Errors, "Margen deseado debe estar entre 0% y 200%") {
		t.Fatalf("expected percent range error, got %v", res.Errors)
	}
}

func TestValidateNonNumericValue(t *testing.T) {
	raw := manufacturingInput()
	raw["materials"] = "tres mil"
	res := Validate(ArchetypeManufacturing, raw)
	if !containsError(res.Errors, "Materias primas debe ser un número") {
		t.Fatalf("expected non-numeric error, got %v", res.Errors)
	}
}

func TestValidateNumericString(t *testing.T) {
	raw := manufacturingInput()
	raw["materials"] = "3000"
	res := Validate(ArchetypeManufacturing, raw)
	if !res.OK() {
		t.Fatalf("numeric strings should be accepted, got %v", res.Errors)
	}
	if res.Costs.Value("materials") != 3000 {
		t.Fatalf("numeric string not parsed: %+v", res.Costs.Values)
	}
}

func TestValidateUnknownArchetype(t *testing.T) {
	res := Validate(Archetype("panaderia"), map[string]any{"materials": 100.0})
	if res.OK() {
		t.Fatal("expected an error for an unknown archetype")
	}
	if !containsError(res.Errors, "Tipo de negocio no válido") {
		t.Fatalf("expected unknown-archetype error, got %v", res.Errors)
	}
}

func TestValidateExperienceLevel(t *testing.T) {
	raw := serviceInput()
	raw["experienceLevel"] = "ninja"
	res := Validate(ArchetypeService, raw)
	if !containsError(res.Errors, "Nivel de experiencia no válido") {
		t.Fatalf("expected invalid experience error, got %v", res.Errors)
	}

	delete(raw, "experienceLevel")
	res = Validate(ArchetypeService, raw)
	if !res.OK() {
		t.Fatalf("missing experience should not be an error, got %v", res.Errors)
	}
	if res.Costs.Experience != "" {
		t.Fatalf("missing experience should stay empty, got %q", res.Costs.Experience)
	}

	raw["experienceLevel"] = "  SENIOR "
	res = Validate(ArchetypeService, raw)
	if !res.OK() || res.Costs.Experience != "senior" {
		t.Fatalf("experience should be case-insensitive: errors=%v experience=%q", res.Errors, res.Costs.Experience)
	}
}

func TestValidateNeverPanicsOnHostileInput(t *testing.T) {
	hostile := []map[string]any{
		nil,
		{},
		{"materials": nil},
		{"materials": []string{"x"}},
		{"materials": map[string]any{"nested": 1}},
		{"unknownField": 42.0},
	}
	for _, raw := range hostile {
		res := Validate(ArchetypeManufacturing, raw)
		if res.Errors == nil {
			t.Fatalf("errors must never be nil for %v", raw)
		}
	}
}

func TestSchemaForListsArchetypeFields(t *testing.T) {
	for _, arch := range Archetypes() {
		fields, ok := SchemaFor(arch)
		if !ok || len(fields) != 4 {
			t.Fatalf("%s: expected 4 schema fields, got %d (ok=%v)", arch, len(fields), ok)
		}
		for _, f := range fields {
			if f.Name == "" || f.Label == "" || f.Prompt == "" {
				t.Fatalf("%s: incomplete field spec %+v", arch, f)
			}
		}
	}
	if _, ok := SchemaFor(Archetype("panaderia")); ok {
		t.Fatal("unknown archetype must not resolve a schema")
	}
}

func TestParseArchetypeAliases(t *testing.T) {
	cases := map[string]Archetype{
		"manufacturing": ArchetypeManufacturing,
		"Manufactura":   ArchetypeManufacturing,
		"1":             ArchetypeManufacturing,
		"reventa":       ArchetypeResale,
		"servicios":     ArchetypeService,
		"Servicio":      ArchetypeService,
		"híbrido":       ArchetypeHybrid,
		"hibrido":       ArchetypeHybrid,
		"4":             ArchetypeHybrid,
	}
	for in, want := range cases {
		got, ok := ParseArchetype(in)
		if !ok || got != want {
			t.Fatalf("ParseArchetype(%q) = %q ok=%v, want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseArchetype("panadería"); ok {
		t.Fatal("unexpected parse success for unsupported business type")
	}
}

func TestParseExperienceAliases(t *testing.T) {
	cases := map[string]ExperienceLevel{
		"junior":     ExperienceJunior,
		"medio":      ExperienceMid,
		"Intermedio": ExperienceMid,
		"SENIOR":     ExperienceSenior,
		"experto":    ExperienceExpert,
	}
	for in, want := range cases {
		got, ok := ParseExperience(in)
		if !ok || got != want {
			t.Fatalf("ParseExperience(%q) = %q ok=%v, want %q", in, got, ok, want)
		}
	}
}

func containsError(errors []string, want string) bool {
	for _, e := range errors {
		if strings.Contains(e, want) {
			return true
		}
	}
	return false
}
