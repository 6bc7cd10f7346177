package vocabulary

// Biomarker categories.
const (
	CategoryMetabolic = "metabolic"
	CategoryLipid     = "lipid"
	CategoryLiver     = "liver"
	CategoryKidney    = "kidney"
	CategoryBlood     = "blood_count"
	CategoryThyroid   = "thyroid"
	CategoryVitamin   = "vitamin"
	CategoryMineral   = "mineral"
	CategoryIron      = "iron"
	CategoryHormone   = "hormone"
	CategoryInflam    = "inflammation"
	CategoryProtein   = "protein"
)

// BiomarkerEntry is one canonical analyte and the names labs print for it.
type BiomarkerEntry struct {
	Key      string   `yaml:"key" json:"key"`
	Name     string   `yaml:"name" json:"name"`
	Category string   `yaml:"category" json:"category"`
	Unit     string   `yaml:"unit,omitempty" json:"unit,omitempty"`
	Aliases  []string `yaml:"aliases" json:"aliases"`
}

var biomarkerTable = []BiomarkerEntry{
	// ===== METABOLIC =====
	{Key: "glucose", Name: "Glucose", Category: CategoryMetabolic, Unit: "mg/dL",
		Aliases: []string{"glucose", "fasting glucose", "glucose fasting", "blood sugar", "fasting blood sugar", "fbs", "fbg", "glu"}},
	{Key: "hemoglobin_a1c", Name: "Hemoglobin A1c", Category: CategoryMetabolic, Unit: "%",
		Aliases: []string{"hemoglobin a1c", "haemoglobin a1c", "hba1c", "a1c", "glycated hemoglobin", "glycohemoglobin", "glycosylated hemoglobin"}},
	{Key: "insulin", Name: "Insulin", Category: CategoryMetabolic, Unit: "µIU/mL",
		Aliases: []string{"insulin", "fasting insulin", "insulin fasting"}},
	{Key: "uric_acid", Name: "Uric Acid", Category: CategoryMetabolic, Unit: "mg/dL",
		Aliases: []string{"uric acid", "urate"}},
	{Key: "homocysteine", Name: "Homocysteine", Category: CategoryMetabolic, Unit: "µmol/L",
		Aliases: []string{"homocysteine", "hcy", "homocyst(e)ine"}},

	// ===== LIPIDS =====
	{Key: "total_cholesterol", Name: "Total Cholesterol", Category: CategoryLipid, Unit: "mg/dL",
		Aliases: []string{"total cholesterol", "cholesterol", "cholesterol total", "chol", "tc"}},
	{Key: "hdl_cholesterol", Name: "HDL Cholesterol", Category: CategoryLipid, Unit: "mg/dL",
		Aliases: []string{"hdl cholesterol", "hdl", "hdl-c", "high density lipoprotein", "hdl chol"}},
	{Key: "ldl_cholesterol", Name: "LDL Cholesterol", Category: CategoryLipid, Unit: "mg/dL",
		Aliases: []string{"ldl cholesterol", "ldl", "ldl-c", "ldl chol", "low density lipoprotein", "ldl cholesterol calc", "ldl calculated"}},
	{Key: "triglycerides", Name: "Triglycerides", Category: CategoryLipid, Unit: "mg/dL",
		Aliases: []string{"triglycerides", "triglyceride", "trig", "tg"}},
	{Key: "vldl_cholesterol", Name: "VLDL Cholesterol", Category: CategoryLipid, Unit: "mg/dL",
		Aliases: []string{"vldl cholesterol", "vldl", "vldl cholesterol cal"}},
	{Key: "non_hdl_cholesterol", Name: "Non-HDL Cholesterol", Category: CategoryLipid, Unit: "mg/dL",
		Aliases: []string{"non-hdl cholesterol", "non hdl cholesterol", "non-hdl"}},
	{Key: "apolipoprotein_b", Name: "Apolipoprotein B", Category: CategoryLipid, Unit: "mg/dL",
		Aliases: []string{"apolipoprotein b", "apo b", "apob"}},
	{Key: "lipoprotein_a", Name: "Lipoprotein(a)", Category: CategoryLipid, Unit: "nmol/L",
		Aliases: []string{"lipoprotein(a)", "lipoprotein a", "lp(a)", "lpa"}},

	// ===== LIVER =====
	{Key: "alt", Name: "ALT", Category: CategoryLiver, Unit: "U/L",
		Aliases: []string{"alt", "alanine aminotransferase", "alanine transaminase", "sgpt", "alt (sgpt)"}},
	{Key: "ast", Name: "AST", Category: CategoryLiver, Unit: "U/L",
		Aliases: []string{"ast", "aspartate aminotransferase", "aspartate transaminase", "sgot", "ast (sgot)"}},
	{Key: "alkaline_phosphatase", Name: "Alkaline Phosphatase", Category: CategoryLiver, Unit: "U/L",
		Aliases: []string{"alkaline phosphatase", "alk phos", "alp", "alkp"}},
	{Key: "ggt", Name: "GGT", Category: CategoryLiver, Unit: "U/L",
		Aliases: []string{"ggt", "gamma-glutamyl transferase", "gamma glutamyl transferase", "ggtp"}},
	{Key: "bilirubin_total", Name: "Bilirubin, Total", Category: CategoryLiver, Unit: "mg/dL",
		Aliases: []string{"bilirubin", "bilirubin total", "total bilirubin", "tbil"}},
	{Key: "bilirubin_direct", Name: "Bilirubin, Direct", Category: CategoryLiver, Unit: "mg/dL",
		Aliases: []string{"bilirubin direct", "direct bilirubin", "dbil", "conjugated bilirubin"}},
	{Key: "albumin", Name: "Albumin", Category: CategoryProtein, Unit: "g/dL",
		Aliases: []string{"albumin", "alb"}},
	{Key: "total_protein", Name: "Total Protein", Category: CategoryProtein, Unit: "g/dL",
		Aliases: []string{"total protein", "protein total", "protein", "tp"}},
	{Key: "globulin", Name: "Globulin", Category: CategoryProtein, Unit: "g/dL",
		Aliases: []string{"globulin", "globulin total"}},
	{Key: "albumin_globulin_ratio", Name: "Albumin/Globulin Ratio", Category: CategoryProtein, Unit: "ratio",
		Aliases: []string{"albumin/globulin ratio", "a/g ratio", "alb/glob ratio", "albumin globulin ratio"}},

	// ===== KIDNEY =====
	{Key: "creatinine", Name: "Creatinine", Category: CategoryKidney, Unit: "mg/dL",
		Aliases: []string{"creatinine", "creat", "cr", "creatinine serum"}},
	{Key: "bun", Name: "Blood Urea Nitrogen", Category: CategoryKidney, Unit: "mg/dL",
		Aliases: []string{"blood urea nitrogen", "bun", "urea nitrogen", "urea nitrogen (bun)"}},
	{Key: "egfr", Name: "eGFR", Category: CategoryKidney, Unit: "mL/min/1.73m²",
		Aliases: []string{"egfr", "estimated gfr", "gfr estimated", "egfr non-afr. american", "egfr african american", "glomerular filtration rate"}},
	{Key: "bun_creatinine_ratio", Name: "BUN/Creatinine Ratio", Category: CategoryKidney, Unit: "ratio",
		Aliases: []string{"bun/creatinine ratio", "bun creatinine ratio", "bun/creat ratio"}},
	{Key: "urine_creatinine", Name: "Creatinine, Urine", Category: CategoryKidney, Unit: "mg/dL",
		Aliases: []string{"urine creatinine", "creatinine urine", "creatinine random urine", "urine creat"}},
	{Key: "urine_albumin", Name: "Microalbumin, Urine", Category: CategoryKidney, Unit: "mg/L",
		Aliases: []string{"microalbumin", "urine albumin", "albumin urine", "microalbumin urine", "microalbumin random urine"}},
	{Key: "albumin_creatinine_ratio", Name: "Albumin/Creatinine Ratio, Urine", Category: CategoryKidney, Unit: "mg/g",
		Aliases: []string{"albumin/creatinine ratio", "albumin creatinine ratio", "microalbumin/creatinine ratio", "microalb/creat ratio", "uacr", "acr"}},

	// ===== ELECTROLYTES / MINERALS =====
	{Key: "sodium", Name: "Sodium", Category: CategoryMineral, Unit: "mmol/L",
		Aliases: []string{"sodium", "na+"}},
	{Key: "potassium", Name: "Potassium", Category: CategoryMineral, Unit: "mmol/L",
		Aliases: []string{"potassium", "k+"}},
	{Key: "chloride", Name: "Chloride", Category: CategoryMineral, Unit: "mmol/L",
		Aliases: []string{"chloride", "cl-"}},
	{Key: "carbon_dioxide", Name: "Carbon Dioxide", Category: CategoryMineral, Unit: "mmol/L",
		Aliases: []string{"carbon dioxide", "co2", "bicarbonate", "hco3", "carbon dioxide total"}},
	{Key: "calcium", Name: "Calcium", Category: CategoryMineral, Unit: "mg/dL",
		Aliases: []string{"calcium", "calcium total"}},
	{Key: "magnesium", Name: "Magnesium", Category: CategoryMineral, Unit: "mg/dL",
		Aliases: []string{"magnesium", "magnesium rbc", "rbc magnesium"}},
	{Key: "phosphorus", Name: "Phosphorus", Category: CategoryMineral, Unit: "mg/dL",
		Aliases: []string{"phosphorus", "phosphate", "inorganic phosphorus"}},
	{Key: "zinc", Name: "Zinc", Category: CategoryMineral, Unit: "µg/dL",
		Aliases: []string{"zinc", "zinc plasma"}},
	{Key: "copper", Name: "Copper", Category: CategoryMineral, Unit: "µg/dL",
		Aliases: []string{"copper"}},
	{Key: "selenium", Name: "Selenium", Category: CategoryMineral, Unit: "µg/L",
		Aliases: []string{"selenium"}},

	// ===== IRON =====
	{Key: "iron", Name: "Iron", Category: CategoryIron, Unit: "µg/dL",
		Aliases: []string{"iron", "serum iron", "iron total"}},
	{Key: "ferritin", Name: "Ferritin", Category: CategoryIron, Unit: "ng/mL",
		Aliases: []string{"ferritin", "serum ferritin"}},
	{Key: "tibc", Name: "Total Iron Binding Capacity", Category: CategoryIron, Unit: "µg/dL",
		Aliases: []string{"tibc", "total iron binding capacity", "iron binding capacity", "iron binding capacity total"}},
	{Key: "transferrin_saturation", Name: "Transferrin Saturation", Category: CategoryIron, Unit: "%",
		Aliases: []string{"transferrin saturation", "iron saturation", "% saturation", "tsat", "saturation"}},
	{Key: "transferrin", Name: "Transferrin", Category: CategoryIron, Unit: "mg/dL",
		Aliases: []string{"transferrin"}},

	// ===== BLOOD COUNT =====
	{Key: "wbc", Name: "White Blood Cells", Category: CategoryBlood, Unit: "10^3/µL",
		Aliases: []string{"white blood cells", "white blood cell count", "wbc", "leukocytes", "wbc count"}},
	{Key: "rbc", Name: "Red Blood Cells", Category: CategoryBlood, Unit: "10^6/µL",
		Aliases: []string{"red blood cells", "red blood cell count", "rbc", "erythrocytes", "rbc count"}},
	{Key: "hemoglobin", Name: "Hemoglobin", Category: CategoryBlood, Unit: "g/dL",
		Aliases: []string{"hemoglobin", "haemoglobin", "hgb", "hb"}},
	{Key: "hematocrit", Name: "Hematocrit", Category: CategoryBlood, Unit: "%",
		Aliases: []string{"hematocrit", "haematocrit", "hct", "packed cell volume", "pcv"}},
	{Key: "mcv", Name: "MCV", Category: CategoryBlood, Unit: "fL",
		Aliases: []string{"mcv", "mean corpuscular volume", "mean cell volume"}},
	{Key: "mch", Name: "MCH", Category: CategoryBlood, Unit: "pg",
		Aliases: []string{"mch", "mean corpuscular hemoglobin"}},
	{Key: "mchc", Name: "MCHC", Category: CategoryBlood, Unit: "g/dL",
		Aliases: []string{"mchc", "mean corpuscular hemoglobin concentration"}},
	{Key: "rdw", Name: "RDW", Category: CategoryBlood, Unit: "%",
		Aliases: []string{"rdw", "red cell distribution width", "rdw-cv"}},
	{Key: "platelets", Name: "Platelets", Category: CategoryBlood, Unit: "10^3/µL",
		Aliases: []string{"platelets", "platelet count", "plt", "thrombocytes"}},
	{Key: "mpv", Name: "MPV", Category: CategoryBlood, Unit: "fL",
		Aliases: []string{"mpv", "mean platelet volume"}},
	{Key: "neutrophils", Name: "Neutrophils", Category: CategoryBlood, Unit: "%",
		Aliases: []string{"neutrophils", "neutrophil", "neut", "segs"}},
	{Key: "lymphocytes", Name: "Lymphocytes", Category: CategoryBlood, Unit: "%",
		Aliases: []string{"lymphocytes", "lymphocyte", "lymphs", "lymph"}},
	{Key: "monocytes", Name: "Monocytes", Category: CategoryBlood, Unit: "%",
		Aliases: []string{"monocytes", "monocyte", "monos"}},
	{Key: "eosinophils", Name: "Eosinophils", Category: CategoryBlood, Unit: "%",
		Aliases: []string{"eosinophils", "eosinophil", "eos"}},
	{Key: "basophils", Name: "Basophils", Category: CategoryBlood, Unit: "%",
		Aliases: []string{"basophils", "basophil", "basos"}},

	// ===== THYROID =====
	{Key: "tsh", Name: "TSH", Category: CategoryThyroid, Unit: "µIU/mL",
		Aliases: []string{"tsh", "thyroid stimulating hormone", "thyrotropin", "tsh 3rd generation"}},
	{Key: "free_t4", Name: "Free T4", Category: CategoryThyroid, Unit: "ng/dL",
		Aliases: []string{"free t4", "ft4", "t4 free", "free thyroxine", "thyroxine free"}},
	{Key: "free_t3", Name: "Free T3", Category: CategoryThyroid, Unit: "pg/mL",
		Aliases: []string{"free t3", "ft3", "t3 free", "free triiodothyronine", "triiodothyronine free"}},
	{Key: "reverse_t3", Name: "Reverse T3", Category: CategoryThyroid, Unit: "ng/dL",
		Aliases: []string{"reverse t3", "rt3", "t3 reverse"}},
	{Key: "tpo_antibodies", Name: "TPO Antibodies", Category: CategoryThyroid, Unit: "IU/mL",
		Aliases: []string{"tpo antibodies", "thyroid peroxidase antibodies", "anti-tpo", "tpo ab", "thyroid peroxidase ab"}},

	// ===== VITAMINS =====
	{Key: "vitamin_d", Name: "Vitamin D, 25-Hydroxy", Category: CategoryVitamin, Unit: "ng/mL",
		Aliases: []string{"vitamin d", "vitamin d 25-hydroxy", "25-hydroxyvitamin d", "25-oh vitamin d", "vitamin d 25 oh", "25(oh)d", "calcidiol", "vitamin d,25-oh,total,ia"}},
	{Key: "vitamin_b12", Name: "Vitamin B12", Category: CategoryVitamin, Unit: "pg/mL",
		Aliases: []string{"vitamin b12", "b12", "cobalamin", "cyanocobalamin", "vitamin b-12"}},
	{Key: "folate", Name: "Folate", Category: CategoryVitamin, Unit: "ng/mL",
		Aliases: []string{"folate", "folic acid", "serum folate", "folate rbc", "rbc folate"}},
	{Key: "vitamin_b6", Name: "Vitamin B6", Category: CategoryVitamin, Unit: "µg/L",
		Aliases: []string{"vitamin b6", "b6", "pyridoxal 5-phosphate", "plp", "pyridoxine"}},
	{Key: "methylmalonic_acid", Name: "Methylmalonic Acid", Category: CategoryVitamin, Unit: "nmol/L",
		Aliases: []string{"methylmalonic acid", "mma"}},
	{Key: "omega_3_index", Name: "Omega-3 Index", Category: CategoryVitamin, Unit: "%",
		Aliases: []string{"omega-3 index", "omega 3 index", "omega-3 total"}},

	// ===== HORMONES =====
	{Key: "testosterone_total", Name: "Testosterone, Total", Category: CategoryHormone, Unit: "ng/dL",
		Aliases: []string{"testosterone", "testosterone total", "total testosterone"}},
	{Key: "testosterone_free", Name: "Testosterone, Free", Category: CategoryHormone, Unit: "pg/mL",
		Aliases: []string{"free testosterone", "testosterone free"}},
	{Key: "estradiol", Name: "Estradiol", Category: CategoryHormone, Unit: "pg/mL",
		Aliases: []string{"estradiol", "e2", "oestradiol"}},
	{Key: "cortisol", Name: "Cortisol", Category: CategoryHormone, Unit: "µg/dL",
		Aliases: []string{"cortisol", "am cortisol", "cortisol am"}},
	{Key: "dhea_s", Name: "DHEA-Sulfate", Category: CategoryHormone, Unit: "µg/dL",
		Aliases: []string{"dhea-sulfate", "dhea sulfate", "dhea-s", "dheas", "dhea s"}},
	{Key: "shbg", Name: "Sex Hormone Binding Globulin", Category: CategoryHormone, Unit: "nmol/L",
		Aliases: []string{"sex hormone binding globulin", "shbg"}},

	// ===== INFLAMMATION =====
	{Key: "hs_crp", Name: "hs-CRP", Category: CategoryInflam, Unit: "mg/L",
		Aliases: []string{"hs-crp", "hscrp", "high sensitivity crp", "c-reactive protein", "c reactive protein", "crp", "high sensitivity c-reactive protein", "cardio crp"}},
	{Key: "esr", Name: "Sedimentation Rate", Category: CategoryInflam, Unit: "mm/h",
		Aliases: []string{"sed rate", "sedimentation rate", "esr", "erythrocyte sedimentation rate"}},
}

// fuzzyCollisions maps abbreviations that are too short for containment matching, or that
// no alias contains, onto the analyte they mean on a lab report. Keys are normalised.
var fuzzyCollisions = map[string]string{
	"na":     "sodium",
	"k":      "potassium",
	"cl":     "chloride",
	"ca":     "calcium",
	"mg":     "magnesium",
	"fe":     "iron",
	"zn":     "zinc",
	"cu":     "copper",
	"se":     "selenium",
	"t4f":    "free_t4",
	"t3f":    "free_t3",
	"tchol":  "total_cholesterol",
	"vitd":   "vitamin_d",
	"vitd3":  "vitamin_d",
	"d25oh":  "vitamin_d",
	"vitb12": "vitamin_b12",
	"hgba1c": "hemoglobin_a1c",
	"ha1c":   "hemoglobin_a1c",
	"plts":   "platelets",
	"crphs":  "hs_crp",
}
