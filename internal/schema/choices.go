package schema

// Procedure codes. Earlier revisions of the calculator form disagree on
// whether mitral repair is "6" or "7"; "7" matches the v4.2 form.
var procedureChoices = []Choice{
	{"CAB", "1"},
	{"AVR", "2"},
	{"MVR", "3"},
	{"AVR+CAB", "4"},
	{"MVR+CAB", "5"},
	{"MVRepair", "7"},
	{"MVRepair+CAB", "8"},
}

var genderChoices = []Choice{
	{"male", "Male"},
	{"female", "Female"},
}

var payorChoices = []Choice{
	{"none", "None"},
	{"medicare", "Medicare"},
	{"medicaid", "Medicaid"},
	{"commercial", "Commercial Health Insurance"},
	{"hmo", "Health Maintenance Organization"},
	{"military", "Military Health"},
	{"ihs", "Indian Health Service"},
	{"correctional", "Correctional Facility"},
	{"nonus", "Non-U.S. Insurance"},
	{"self", "Self"},
	{"other", "Other"},
}

var stenosisChoices = []Choice{
	{"none", "None"},
	{"50-79", "50% to 79%"},
	{"80-99", "80% to 99%"},
	{"100", "100 %"},
	{"notdoc", "Not documented"},
}

var strokeTimingChoices = []Choice{
	{"le30d", "<= 30 days"},
	{"gt30d", "> 30 days"},
}

var diabetesControlChoices = []Choice{
	{"none", "None"},
	{"diet", "Diet only"},
	{"oral", "Oral"},
	{"insulin", "Insulin"},
	{"other", "Other subcutaneous medication"},
	{"unknown", "Unknown"},
}

var endocarditisChoices = []Choice{
	{"treated", "Treated"},
	{"active", "Active"},
}

var lungDiseaseChoices = []Choice{
	{"none", "No"},
	{"mild", "Mild"},
	{"moderate", "Moderate"},
	{"severe", "Severe"},
	{"unknown", "Lung disease documented, severity unknown"},
}

var alcoholChoices = []Choice{
	{"none", "None"},
	{"le1", "<= 1 drink/week"},
	{"2to7", "2-7 drinks/week"},
	{"ge8", ">= 8 drinks/week"},
	{"unknown", "Unknown"},
}

var pneumoniaChoices = []Choice{
	{"no", "No"},
	{"recent", "Recent"},
	{"remote", "Remote"},
}

var tobaccoChoices = []Choice{
	{"never", "Never smoker"},
	{"current", "Current every day smoker"},
	{"currentsome", "Current some day smoker"},
	{"former", "Former smoker"},
	{"unknown", "Smoking status unknown"},
}

var homeOxygenChoices = []Choice{
	{"no", "No"},
	{"prn", "Yes, PRN"},
	{"dependent", "Yes, oxygen dependent"},
	{"unknown", "Unknown"},
}

var priorValveChoices = []Choice{
	{"avrepair", "Aortic valve repair, surgical"},
	{"avreplace", "Aortic valve replacement, surgical"},
	{"avtcath", "Aortic valve replacement, transcatheter"},
	{"avballoon", "Aortic valve balloon valvotomy/valvuloplasty"},
	{"mvrepair", "Mitral valve repair, surgical"},
	{"mvreplace", "Mitral valve replacement, surgical"},
	{"mvtcath", "Mitral valve repair, percutaneous"},
	{"tvrepair", "Tricuspid valve repair, surgical"},
	{"tvreplace", "Tricuspid valve replacement, surgical"},
	{"pv", "Pulmonary valve repair/replacement"},
	{"other", "Other valve procedure"},
}

var priorInterventionChoices = []Choice{
	{"icd", "ICD"},
	{"pacemaker", "Pacemaker"},
	{"ablationcath", "Ablation, catheter"},
	{"ablationsurg", "Ablation, surgical"},
	{"aorticaneurysm", "Aortic aneurysm repair"},
	{"lvaneurysm", "LV aneurysm repair"},
	{"congenital", "Congenital cardiac repair, surgical"},
	{"other", "Other cardiac intervention"},
}

var pciTimingChoices = []Choice{
	{"le6h", "Yes, at this facility, <= 6 Hours"},
	{"gt6h", "Yes, at this facility, > 6 Hours"},
	{"elsewhere", "Yes, at some other acute care facility"},
	{"no", "No"},
}

var pciIntervalChoices = []Choice{
	{"le6h", "<= 6 Hours"},
	{"gt6h", "> 6 Hours"},
}

var miTimingChoices = []Choice{
	{"le6h", "<=6 Hrs"},
	{"6to24h", ">6 Hrs but <24 Hrs"},
	{"1to7d", "1 to 7 Days"},
	{"8to21d", "8 to 21 Days"},
	{"gt21d", ">21 Days"},
}

const (
	heartFailureAcute   = "Acute"
	heartFailureChronic = "Chronic"
	heartFailureBoth    = "Both"
)

var heartFailureChoices = []Choice{
	{"no", "No"},
	{"acute", heartFailureAcute},
	{"chronic", heartFailureChronic},
	{"both", heartFailureBoth},
}

var nyhaChoices = []Choice{
	{"i", "Class I"},
	{"ii", "Class II"},
	{"iii", "Class III"},
	{"iv", "Class IV"},
	{"notdoc", "Not Documented"},
}

var symptomChoices = []Choice{
	{"none", "No Symptoms"},
	{"stable", "Stable Angina"},
	{"unstable", "Unstable Angina"},
	{"nstemi", "Non-ST Elevation MI (Non-STEMI)"},
	{"stemi", "ST Elevation MI (STEMI)"},
	{"equivalent", "Angina Equivalent"},
	{"other", "Other"},
}

const (
	arrhythmiaRemote = "Remote"
	arrhythmiaRecent = "Recent"
)

var arrhythmiaTimingChoices = []Choice{
	{"none", "None"},
	{"remote", arrhythmiaRemote},
	{"recent", arrhythmiaRecent},
}

var afibTypeChoices = []Choice{
	{"paroxysmal", "Paroxysmal"},
	{"persistent", "Persistent"},
	{"longstanding", "Longstanding Persistent"},
	{"permanent", "Permanent"},
}

var adpInhibitorChoices = []Choice{
	{"clopidogrel", "Clopidogrel"},
	{"prasugrel", "Prasugrel"},
	{"ticagrelor", "Ticagrelor"},
	{"ticlopidine", "Ticlopidine"},
	{"other", "Other"},
}

var diseasedVesselChoices = []Choice{
	{"none", "None"},
	{"one", "One"},
	{"two", "Two"},
	{"three", "Three"},
}

var yesNoChoices = []Choice{
	{"yes", "Yes"},
	{"no", "No"},
}

var insufficiencyChoices = []Choice{
	{"none", "None"},
	{"trivial", "Trivial/Trace"},
	{"mild", "Mild"},
	{"moderate", "Moderate"},
	{"severe", "Severe"},
}

var aorticEtiologyChoices = []Choice{
	{"bicuspid", "Bicuspid valve disease"},
	{"degenerative", "Degenerative"},
	{"endocarditis", "Endocarditis"},
	{"rheumatic", "Rheumatic"},
	{"other", "Other"},
}

var incidenceChoices = []Choice{
	{"first", "First cardiovascular surgery"},
	{"reop1", "First re-op cardiovascular surgery"},
	{"reop2", "Second re-op cardiovascular surgery"},
	{"reop3", "Third re-op cardiovascular surgery"},
	{"reop4", "Fourth or more re-op cardiovascular surgery"},
}

var statusChoices = []Choice{
	{"elective", "Elective"},
	{"urgent", "Urgent"},
	{"emergent", "Emergent"},
	{"salvage", "Emergent Salvage"},
}

var supportTimingChoices = []Choice{
	{"none", "None"},
	{"preop", "Preop"},
	{"intraop", "Intraop"},
	{"postop", "Postop"},
}

var ecmoTimingChoices = []Choice{
	{"none", "None"},
	{"preop", "Preop"},
	{"intraop", "Intraop"},
	{"postop", "Postop"},
	{"nonop", "Non-operative"},
}

// payorSet lists every payor value except "None", which does not count as
// having a primary payor.
func payorSet() []string {
	var out []string
	for _, c := range payorChoices {
		if c.Value != "None" {
			out = append(out, c.Value)
		}
	}
	return out
}
