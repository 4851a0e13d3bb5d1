package schema

// Field name constants referenced outside the table.
const (
	PatientID = "patientid"
	Weight    = "weightkg"
	Height    = "heightcm"
	BMI       = "calculatedbmi"
)

// Section names group fields for display.
const (
	SectionIdentity      = "identity"
	SectionDemographics  = "demographics"
	SectionBody          = "body"
	SectionLabs          = "labs"
	SectionComorbidities = "comorbidities"
	SectionPrior         = "previous interventions"
	SectionCardiac       = "cardiac status"
	SectionArrhythmia    = "arrhythmia"
	SectionMedications   = "medications"
	SectionHemodynamics  = "hemodynamics"
	SectionValve         = "valve disease"
	SectionOperative     = "operative status"
	SectionSupport       = "mechanical support"
)

func fieldTable() []FieldSpec {
	var fields []FieldSpec
	add := func(group []FieldSpec) { fields = append(fields, group...) }

	add(section(SectionIdentity,
		text(PatientID, "Patient identifier", internal()),
		enum("procid", "Procedure", procedureChoices, asList()),
	))

	add(section(SectionDemographics,
		integer("age", "Age (years)", 1, 110),
		enum("gender", "Gender", genderChoices, asList()),
		flag("raceblack", "Race: Black/African American", inGroup("race", "Black/African American")),
		flag("raceasian", "Race: Asian", inGroup("race", "Asian")),
		flag("racenativeam", "Race: American Indian/Alaskan Native", inGroup("race", "American Indian/Alaskan Native")),
		flag("racnativepacific", "Race: Native Hawaiian/Pacific Islander", inGroup("race", "Native Hawaiian/Pacific Islander")),
		flag("ethnicity", "Hispanic, Latino or Spanish ethnicity", inGroup("race", "Hispanic, Latino or Spanish Ethnicity")),
		enum("payorprim", "Primary payor", payorChoices, inGroup("payor", "")),
		enum("payorsecond", "Secondary payor", payorChoices, inGroup("payor", ""), requires("payorprim", payorSet()...)),
		date("surgdt", "Date of surgery"),
	))

	add(section(SectionBody,
		decimal(Weight, "Weight (kg)", 10, 250),
		decimal(Height, "Height (cm)", 20, 251),
		decimal(BMI, "Body mass index", 0, 0, derived()),
	))

	add(section(SectionLabs,
		decimal("hct", "Hematocrit (%)", 1, 99),
		decimal("wbc", "White blood cell count (10^3/uL)", 0.1, 100),
		integer("platelets", "Platelets (cells/uL)", 1000, 900000),
		decimal("creatlst", "Last creatinine (mg/dL)", 0.1, 30),
	))

	add(section(SectionComorbidities,
		flag("dialysis", "Dialysis", asBool()),
		flag("hypertn", "Hypertension", asBool()),
		flag("immsupp", "Immunocompromise", asBool()),
		flag("pvd", "Peripheral arterial disease", asBool()),
		flag("cvd", "Cerebrovascular disease", asBool()),
		flag("cvdtia", "Prior TIA", requiresYes("cvd")),
		flag("cvdpcarsurg", "Prior carotid surgery", requiresYes("cvd")),
		enum("cvdstenrt", "Right carotid stenosis", stenosisChoices, requiresYes("cvd")),
		enum("cvdstenlft", "Left carotid stenosis", stenosisChoices, requiresYes("cvd")),
		flag("cva", "Prior CVA", requiresYes("cvd")),
		enum("cvawhen", "CVA timing", strokeTimingChoices, requiresYes("cva")),
		flag("mediastrad", "Mediastinal radiation", asBool()),
		flag("cancer", "Cancer within 5 years", asBool()),
		flag("fhcad", "Family history of CAD", asBool()),
		flag("slpapn", "Sleep apnea", asBool()),
		flag("liverdis", "Liver disease", asBool()),
		flag("unrespstat", "Unresponsive state", asBool()),
		flag("syncope", "Syncope", asBool()),
		flag("diabetes", "Diabetes"),
		enum("diabctrl", "Diabetes control", diabetesControlChoices, requiresYes("diabetes")),
		flag("infendo", "Infectious endocarditis"),
		enum("infendty", "Endocarditis type", endocarditisChoices, requiresYes("infendo")),
		enum("chrlungd", "Chronic lung disease", lungDiseaseChoices),
		flag("ivdrugab", "Illicit drug use"),
		enum("alcohol", "Alcohol use", alcoholChoices),
		enum("pneumonia", "Pneumonia", pneumoniaChoices),
		enum("tobaccouse", "Tobacco use", tobaccoChoices),
		enum("homeo2", "Home oxygen", homeOxygenChoices),
	))

	add(section(SectionPrior,
		flag("prcvint", "Previous cardiac intervention"),
		flag("prcab", "Previous CAB", requiresYes("prcvint")),
		flag("prvalve", "Previous valve procedure", requiresYes("prcvint")),
		enum("prvalveproc1", "Previous valve procedure 1", priorValveChoices, requiresYes("prvalve"), inGroup("prvalveproc", "")),
		enum("prvalveproc2", "Previous valve procedure 2", priorValveChoices, requiresYes("prvalve"), inGroup("prvalveproc", "")),
		enum("prvalveproc3", "Previous valve procedure 3", priorValveChoices, requiresYes("prvalve"), inGroup("prvalveproc", "")),
		enum("prvalveproc4", "Previous valve procedure 4", priorValveChoices, requiresYes("prvalve"), inGroup("prvalveproc", "")),
		enum("prvalveproc5", "Previous valve procedure 5", priorValveChoices, requiresYes("prvalve"), inGroup("prvalveproc", "")),
		enum("pocint1", "Other previous intervention 1", priorInterventionChoices, requiresYes("prcvint"), inGroup("pocint", "")),
		enum("pocint2", "Other previous intervention 2", priorInterventionChoices, requiresYes("prcvint"), inGroup("pocint", "")),
		enum("pocint3", "Other previous intervention 3", priorInterventionChoices, requiresYes("prcvint"), inGroup("pocint", "")),
		enum("pocint4", "Other previous intervention 4", priorInterventionChoices, requiresYes("prcvint"), inGroup("pocint", "")),
		enum("pocint5", "Other previous intervention 5", priorInterventionChoices, requiresYes("prcvint"), inGroup("pocint", "")),
		enum("pocint6", "Other previous intervention 6", priorInterventionChoices, requiresYes("prcvint"), inGroup("pocint", "")),
		enum("pocint7", "Other previous intervention 7", priorInterventionChoices, requiresYes("prcvint"), inGroup("pocint", "")),
		flag("pocpci", "Previous PCI", requiresYes("prcvint")),
		enum("pocpciwhen", "PCI within this episode", pciTimingChoices, requiresYes("pocpci")),
		enum("pocpciin", "Interval from PCI to surgery", pciIntervalChoices, requiresYes("pocpci")),
	))

	add(section(SectionCardiac,
		enum("miwhen", "Prior MI timing", miTimingChoices),
		enum("heartfailtmg", "Heart failure", heartFailureChoices),
		enum("classnyh", "NYHA class", nyhaChoices, asList(),
			requires("heartfailtmg", heartFailureAcute, heartFailureChronic, heartFailureBoth)),
		enum("cardsymptimeofadm", "Symptoms on admission", symptomChoices),
		flag("carshock", "Cardiogenic shock", asBool()),
		flag("resusc", "Resuscitation", asBool()),
	))

	add(section(SectionArrhythmia,
		enum("arrhythatrfib", "Atrial fibrillation", arrhythmiaTimingChoices),
		enum("arrhythafib", "Atrial fibrillation type", afibTypeChoices,
			requires("arrhythatrfib", arrhythmiaRemote, arrhythmiaRecent)),
		enum("arrhythaflutter", "Atrial flutter", arrhythmiaTimingChoices),
		enum("arrhyththird", "Third degree heart block", arrhythmiaTimingChoices),
		enum("arrhythsecond", "Second degree heart block", arrhythmiaTimingChoices),
		enum("arrhythsss", "Sick sinus syndrome", arrhythmiaTimingChoices),
		enum("arrhythvv", "VT/VF", arrhythmiaTimingChoices),
	))

	add(section(SectionMedications,
		flag("medinotr", "Inotropes within 48 hours", asBool()),
		flag("medadp5days", "ADP inhibitor within 5 days"),
		enum("medadpidis", "ADP inhibitor", adpInhibitorChoices, requiresYes("medadp5days")),
		flag("medacei48", "ACE inhibitor or ARB within 48 hours", asBool()),
		flag("medbeta", "Beta blocker within 24 hours", asBool()),
		flag("medster", "Steroids within 24 hours", asBool()),
		flag("medgp", "Glycoprotein IIb/IIIa inhibitor", asBool()),
	))

	add(section(SectionHemodynamics,
		enum("numdisv", "Diseased vessels", diseasedVesselChoices, asList()),
		decimal("pctstenlmain", "Left main stenosis (%)", 0, 100),
		decimal("pctstenproxlad", "Proximal LAD stenosis (%)", 0, 100),
		decimal("hdef", "Ejection fraction (%)", 1, 99),
	))

	add(section(SectionValve,
		enum("vdstena", "Aortic stenosis", yesNoChoices),
		enum("vdstenm", "Mitral stenosis", yesNoChoices),
		enum("vdinsufa", "Aortic insufficiency", insufficiencyChoices),
		enum("vdinsufm", "Mitral insufficiency", insufficiencyChoices),
		enum("vdinsuft", "Tricuspid insufficiency", insufficiencyChoices),
		enum("vdaoprimet", "Aortic valve etiology", aorticEtiologyChoices),
	))

	add(section(SectionOperative,
		enum("incidenc", "Incidence", incidenceChoices, asList()),
		enum("status", "Status", statusChoices, asList()),
	))

	add(section(SectionSupport,
		enum("iabpwhen", "IABP", supportTimingChoices),
		enum("cathbasassistwhen", "Catheter based assist device", supportTimingChoices),
		enum("ecmowhen", "ECMO", ecmoTimingChoices),
	))

	return fields
}
