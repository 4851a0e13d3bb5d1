package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sts-risk-cli/internal/schema"
)

func baseRow() map[string]string {
	return map[string]string{
		"patientid": "P1",
		"procid":    "CAB",
		"age":       "67",
		"gender":    "male",
		"weightkg":  "70",
		"heightcm":  "175",
		"surgdt":    "3/14/2024",
		"status":    "elective",
	}
}

func TestValidate_EveryFieldPresent(t *testing.T) {
	v := NewValidator(nil)
	rec, violations := v.Validate(baseRow())
	require.Empty(t, violations)
	require.NotNil(t, rec)

	reg := schema.Default()
	assert.Equal(t, reg.Len(), rec.Len())
	assert.Equal(t, reg.Names(), rec.Names())
	values := rec.Values()
	assert.Len(t, values, reg.Len())
	for _, name := range reg.Names() {
		_, ok := values[name]
		assert.True(t, ok, name)
	}
	assert.Equal(t, "", rec.Get("diabetes"))
	assert.Equal(t, "", rec.Get("nosuchfield"))
}

func TestValidate_Canonicalizes(t *testing.T) {
	row := baseRow()
	row["cvd"] = "yes"
	row["cvdstenrt"] = "80-99"
	row["age"] = " 067 "
	rec, violations := NewValidator(nil).Validate(row)
	require.Empty(t, violations)

	assert.Equal(t, "P1", rec.ID())
	assert.Equal(t, "1", rec.Get("procid"))
	assert.Equal(t, "Male", rec.Get("gender"))
	assert.Equal(t, "Yes", rec.Get("cvd"))
	assert.Equal(t, "80% to 99%", rec.Get("cvdstenrt"))
	assert.Equal(t, "67", rec.Get("age"))
	assert.Equal(t, "Elective", rec.Get("status"))
}

func TestValidate_BMI(t *testing.T) {
	rec, violations := NewValidator(nil).Validate(baseRow())
	require.Empty(t, violations)
	assert.Equal(t, "22.86", rec.Get(schema.BMI))

	row := baseRow()
	delete(row, "heightcm")
	rec, violations = NewValidator(nil).Validate(row)
	require.Empty(t, violations)
	assert.Equal(t, "", rec.Get(schema.BMI))
}

func TestValidate_AgeBoundaries(t *testing.T) {
	tests := []struct {
		age string
		ok  bool
	}{
		{"1", true},
		{"110", true},
		{"0", false},
		{"111", false},
		{"45.5", false},
		{"abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.age, func(t *testing.T) {
			row := baseRow()
			row["age"] = tt.age
			rec, violations := NewValidator(nil).Validate(row)
			if tt.ok {
				assert.NotNil(t, rec)
				assert.Empty(t, violations)
				return
			}
			assert.Nil(t, rec)
			require.Len(t, violations, 1)
			assert.Equal(t, ViolationDomain, violations[0].Kind)
			assert.Equal(t, "age", violations[0].Field)
		})
	}
}

func TestValidate_NumericRanges(t *testing.T) {
	tests := []struct {
		field, value string
		ok           bool
	}{
		{"weightkg", "10", true},
		{"weightkg", "250.1", false},
		{"heightcm", "251", true},
		{"heightcm", "19.9", false},
		{"hct", "99", true},
		{"hct", "0", false},
		{"wbc", "0.1", true},
		{"wbc", "0.05", false},
		{"platelets", "900000", true},
		{"platelets", "999", false},
		{"creatlst", "30", true},
		{"creatlst", "NaN", false},
		{"hdef", "1", true},
		{"hdef", "100", false},
		{"pctstenlmain", "0", true},
		{"pctstenproxlad", "101", false},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			row := baseRow()
			row[tt.field] = tt.value
			_, violations := NewValidator(nil).Validate(row)
			if tt.ok {
				assert.Empty(t, violations)
			} else {
				require.Len(t, violations, 1)
				assert.Equal(t, tt.field, violations[0].Field)
			}
		})
	}
}

func TestValidate_DecimalForms(t *testing.T) {
	tests := []struct {
		field, value string
	}{
		{"weightkg", "0x1p6"},
		{"weightkg", "7e1"},
		{"weightkg", "70_0"},
		{"hct", "4e1"},
		{"creatlst", "Inf"},
		{"heightcm", " 1.75e2"},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			row := baseRow()
			row[tt.field] = tt.value
			rec, violations := NewValidator(nil).Validate(row)
			assert.Nil(t, rec)
			require.Len(t, violations, 1)
			assert.Equal(t, ViolationDomain, violations[0].Kind)
			assert.Equal(t, tt.field, violations[0].Field)
			assert.Contains(t, violations[0].Message, "not a decimal number")
		})
	}

	row := baseRow()
	row["weightkg"] = "70.5"
	row["hct"] = "40.25"
	rec, violations := NewValidator(nil).Validate(row)
	require.Empty(t, violations)
	assert.Equal(t, "70.5", rec.Get("weightkg"))
	assert.Equal(t, "40.25", rec.Get("hct"))
}

func TestValidate_Dates(t *testing.T) {
	for _, ok := range []string{"1/2/2024", "12/31/1999", "02/29/2024"} {
		row := baseRow()
		row["surgdt"] = ok
		rec, violations := NewValidator(nil).Validate(row)
		require.Empty(t, violations, ok)
		assert.Equal(t, ok, rec.Get("surgdt"))
	}
	for _, bad := range []string{"2024-01-02", "13/1/2024", "2/29/2023", "1/2/24"} {
		row := baseRow()
		row["surgdt"] = bad
		_, violations := NewValidator(nil).Validate(row)
		require.Len(t, violations, 1, bad)
		assert.Equal(t, "surgdt", violations[0].Field)
	}
}

func TestValidate_CarotidDependency(t *testing.T) {
	row := baseRow()
	row["cvdpcarsurg"] = "Yes"
	rec, violations := NewValidator(nil).Validate(row)
	assert.Nil(t, rec)
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationDependency, violations[0].Kind)
	assert.Equal(t, "cvdpcarsurg", violations[0].Field)
	assert.Equal(t, "cvd", violations[0].Parent)
}

func TestValidate_DependencyRules(t *testing.T) {
	tests := []struct {
		name   string
		set    map[string]string
		fields []string
	}{
		{"diabetes control without diabetes", map[string]string{"diabctrl": "insulin"}, []string{"diabctrl"}},
		{"diabetes control with diabetes", map[string]string{"diabctrl": "insulin", "diabetes": "Yes"}, nil},
		{"secondary payor without primary", map[string]string{"payorsecond": "medicaid"}, []string{"payorsecond"}},
		{"secondary payor with none primary", map[string]string{"payorprim": "none", "payorsecond": "medicaid"}, []string{"payorsecond"}},
		{"secondary payor with primary", map[string]string{"payorprim": "medicare", "payorsecond": "medicaid"}, nil},
		{"stroke timing without stroke", map[string]string{"cvd": "Yes", "cvawhen": "le30d"}, []string{"cvawhen"}},
		{"afib type with no afib", map[string]string{"arrhythatrfib": "none", "arrhythafib": "permanent"}, []string{"arrhythafib"}},
		{"afib type with recent afib", map[string]string{"arrhythatrfib": "recent", "arrhythafib": "permanent"}, nil},
		{"nyha without heart failure", map[string]string{"heartfailtmg": "no", "classnyh": "iii"}, []string{"classnyh"}},
		{"valve procs chain", map[string]string{"prvalveproc1": "avreplace", "prvalve": "Yes"}, []string{"prvalve"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := baseRow()
			for k, val := range tt.set {
				row[k] = val
			}
			_, violations := NewValidator(nil).Validate(row)
			var got []string
			for _, v := range violations {
				assert.Equal(t, ViolationDependency, v.Kind)
				got = append(got, v.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestValidate_CollectsAllInRegistryOrder(t *testing.T) {
	row := baseRow()
	row["zzz"] = "1"
	row["aaa"] = "2"
	row["hdef"] = "0"
	row["age"] = "200"
	row["gender"] = "other"
	row["cvdtia"] = "Yes"

	_, violations := NewValidator(nil).Validate(row)
	var got []string
	for _, v := range violations {
		got = append(got, v.Kind.String()+":"+v.Field)
	}
	want := []string{
		"schema:aaa",
		"schema:zzz",
		"domain:age",
		"domain:gender",
		"dependency:cvdtia",
		"domain:hdef",
	}
	assert.Equal(t, want, got)
	assert.True(t, violations.HasSchema())
	assert.Len(t, violations.ByKind(ViolationDomain), 3)
	assert.Contains(t, violations.Error(), `domain: age="200": out of range 1..110`)
}

func TestValidate_DerivedCannotBeSupplied(t *testing.T) {
	row := baseRow()
	row[schema.BMI] = "30"
	_, violations := NewValidator(nil).Validate(row)
	require.Len(t, violations, 1)
	assert.Equal(t, schema.BMI, violations[0].Field)
	assert.Equal(t, ViolationDomain, violations[0].Kind)
}

func TestValidate_FlagOnlyYes(t *testing.T) {
	row := baseRow()
	row["dialysis"] = "No"
	_, violations := NewValidator(nil).Validate(row)
	require.Len(t, violations, 1)
	assert.Equal(t, "flag must be Yes or empty", violations[0].Message)
}

func TestValidate_Idempotent(t *testing.T) {
	v := NewValidator(nil)
	row := baseRow()
	row["cvd"] = "Yes"
	row["cva"] = "yes"
	row["cvawhen"] = "gt30d"

	first, violations := v.Validate(row)
	require.Empty(t, violations)
	second, violations := v.Validate(row)
	require.Empty(t, violations)

	if diff := cmp.Diff(first.Values(), second.Values()); diff != "" {
		t.Errorf("records differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
}

func TestFingerprint_IgnoresPatientID(t *testing.T) {
	v := NewValidator(nil)
	a := baseRow()
	b := baseRow()
	b["patientid"] = "P2"
	c := baseRow()
	c["age"] = "68"

	ra, _ := v.Validate(a)
	rb, _ := v.Validate(b)
	rc, _ := v.Validate(c)
	assert.Equal(t, ra.Fingerprint(), rb.Fingerprint())
	assert.NotEqual(t, ra.Fingerprint(), rc.Fingerprint())
}

type constDeriver struct{}

func (constDeriver) Field() string { return "procid" }

func (constDeriver) Derive(func(string) string) (string, bool) { return "2", true }

func TestValidate_CustomDerivers(t *testing.T) {
	v := NewValidator(nil, WithDerivers(constDeriver{}))
	rec, violations := v.Validate(baseRow())
	require.Empty(t, violations)
	assert.Equal(t, "2", rec.Get("procid"))
	assert.Equal(t, "", rec.Get(schema.BMI))
}

func TestBMIDeriver(t *testing.T) {
	get := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}
	d := BMIDeriver{}
	assert.Equal(t, schema.BMI, d.Field())

	v, ok := d.Derive(get(map[string]string{"weightkg": "70", "heightcm": "175"}))
	assert.True(t, ok)
	assert.Equal(t, "22.86", v)

	v, ok = d.Derive(get(map[string]string{"weightkg": "100", "heightcm": "200"}))
	assert.True(t, ok)
	assert.Equal(t, "25.00", v)

	_, ok = d.Derive(get(map[string]string{"weightkg": "70"}))
	assert.False(t, ok)
	_, ok = d.Derive(get(map[string]string{"heightcm": "175"}))
	assert.False(t, ok)
}
