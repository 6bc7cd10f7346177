package vocabulary

// VariantEntry is one canonical genetic variant. Ref and Alt are the alleles as reported on
// the plus strand by consumer genotyping services; they let a zygosity word be turned into
// a genotype when a report prints only a protein change.
type VariantEntry struct {
	Key        string   `yaml:"key" json:"key"`
	Identifier string   `yaml:"identifier" json:"identifier"`
	Gene       string   `yaml:"gene" json:"gene"`
	Name       string   `yaml:"name" json:"name"`
	Ref        string   `yaml:"ref,omitempty" json:"ref,omitempty"`
	Alt        string   `yaml:"alt,omitempty" json:"alt,omitempty"`
	Notations  []string `yaml:"notations,omitempty" json:"notations,omitempty"`
	Aliases    []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

var variantTable = []VariantEntry{
	// ===== METHYLATION / FOLATE =====
	{Key: "mthfr_c677t", Identifier: "rs1801133", Gene: "MTHFR", Name: "MTHFR C677T", Ref: "G", Alt: "A",
		Notations: []string{"C677T", "c.665C>T", "p.Ala222Val", "A222V"},
		Aliases:   []string{"mthfr 677", "mthfr c677t", "mthfr 677c>t"}},
	{Key: "mthfr_a1298c", Identifier: "rs1801131", Gene: "MTHFR", Name: "MTHFR A1298C", Ref: "T", Alt: "G",
		Notations: []string{"A1298C", "c.1286A>C", "p.Glu429Ala", "E429A"},
		Aliases:   []string{"mthfr 1298", "mthfr a1298c", "mthfr 1298a>c"}},
	{Key: "mtr_a2756g", Identifier: "rs1805087", Gene: "MTR", Name: "MTR A2756G", Ref: "A", Alt: "G",
		Notations: []string{"A2756G", "c.2756A>G", "p.Asp919Gly", "D919G"},
		Aliases:   []string{"mtr 2756", "mtr a2756g"}},
	{Key: "mtrr_a66g", Identifier: "rs1801394", Gene: "MTRR", Name: "MTRR A66G", Ref: "A", Alt: "G",
		Notations: []string{"A66G", "c.66A>G", "p.Ile22Met", "I22M"},
		Aliases:   []string{"mtrr 66", "mtrr a66g"}},
	{Key: "mthfd1_g1958a", Identifier: "rs2236225", Gene: "MTHFD1", Name: "MTHFD1 G1958A", Ref: "G", Alt: "A",
		Notations: []string{"G1958A", "c.1958G>A", "p.Arg653Gln", "R653Q"},
		Aliases:   []string{"mthfd1 1958", "mthfd1 g1958a"}},
	{Key: "shmt1_c1420t", Identifier: "rs1979277", Gene: "SHMT1", Name: "SHMT1 C1420T", Ref: "G", Alt: "A",
		Notations: []string{"C1420T", "p.Leu474Phe", "L474F"},
		Aliases:   []string{"shmt1 1420", "shmt1 c1420t"}},
	{Key: "bhmt_r239q", Identifier: "rs3733890", Gene: "BHMT", Name: "BHMT R239Q", Ref: "G", Alt: "A",
		Notations: []string{"G742A", "p.Arg239Gln", "R239Q"},
		Aliases:   []string{"bhmt 742", "bhmt r239q"}},
	{Key: "cbs_c699t", Identifier: "rs234706", Gene: "CBS", Name: "CBS C699T", Ref: "G", Alt: "A",
		Notations: []string{"C699T", "c.699C>T"},
		Aliases:   []string{"cbs 699", "cbs c699t"}},
	{Key: "pemt_v175m", Identifier: "rs7946", Gene: "PEMT", Name: "PEMT V175M", Ref: "C", Alt: "T",
		Notations: []string{"G523A", "p.Val175Met", "V175M"},
		Aliases:   []string{"pemt v175m"}},
	{Key: "tcn2_c776g", Identifier: "rs1801198", Gene: "TCN2", Name: "TCN2 C776G", Ref: "C", Alt: "G",
		Notations: []string{"C776G", "c.776C>G", "p.Pro259Arg", "P259R"},
		Aliases:   []string{"tcn2 776", "tcn2 c776g"}},
	{Key: "comt_v158m", Identifier: "rs4680", Gene: "COMT", Name: "COMT Val158Met", Ref: "G", Alt: "A",
		Notations: []string{"G472A", "c.472G>A", "p.Val158Met", "V158M"},
		Aliases:   []string{"comt val158met", "comt 158", "comt v158m"}},

	// ===== VITAMIN D =====
	{Key: "vdr_fok1", Identifier: "rs2228570", Gene: "VDR", Name: "VDR FokI", Ref: "A", Alt: "G",
		Notations: []string{"c.2T>C", "p.Met1Thr", "M1T"},
		Aliases:   []string{"vdr foki", "vdr fok1", "foki", "fok1"}},
	{Key: "vdr_bsm1", Identifier: "rs1544410", Gene: "VDR", Name: "VDR BsmI", Ref: "C", Alt: "T",
		Aliases: []string{"vdr bsmi", "vdr bsm1", "bsmi", "bsm1"}},
	{Key: "vdr_taq1", Identifier: "rs731236", Gene: "VDR", Name: "VDR TaqI", Ref: "A", Alt: "G",
		Aliases: []string{"vdr taqi", "vdr taq1", "taqi", "taq1"}},
	{Key: "gc_rs2282679", Identifier: "rs2282679", Gene: "GC", Name: "GC rs2282679", Ref: "T", Alt: "G",
		Aliases: []string{"vitamin d binding protein rs2282679"}},
	{Key: "gc_d432e", Identifier: "rs7041", Gene: "GC", Name: "GC D432E", Ref: "A", Alt: "C",
		Notations: []string{"p.Asp432Glu", "D432E"},
		Aliases:   []string{"gc d432e"}},
	{Key: "cyp2r1_rs10741657", Identifier: "rs10741657", Gene: "CYP2R1", Name: "CYP2R1 rs10741657", Ref: "G", Alt: "A"},
	{Key: "dhcr7_rs12785878", Identifier: "rs12785878", Gene: "DHCR7", Name: "DHCR7 rs12785878", Ref: "T", Alt: "G"},

	// ===== VITAMIN A / B12 / B6 / C =====
	{Key: "bcmo1_a379v", Identifier: "rs7501331", Gene: "BCMO1", Name: "BCMO1 A379V", Ref: "C", Alt: "T",
		Notations: []string{"p.Ala379Val", "A379V"},
		Aliases:   []string{"bco1 a379v", "bcmo1 a379v"}},
	{Key: "bcmo1_r267s", Identifier: "rs12934922", Gene: "BCMO1", Name: "BCMO1 R267S", Ref: "A", Alt: "T",
		Notations: []string{"p.Arg267Ser", "R267S"},
		Aliases:   []string{"bco1 r267s", "bcmo1 r267s"}},
	{Key: "fut2_w143x", Identifier: "rs601338", Gene: "FUT2", Name: "FUT2 W143X", Ref: "G", Alt: "A",
		Notations: []string{"G428A", "c.461G>A", "p.Trp154Ter", "W154X", "W143X"},
		Aliases:   []string{"fut2 secretor", "fut2 g428a", "fut2 w143x"}},
	{Key: "nbpf3_rs4654748", Identifier: "rs4654748", Gene: "NBPF3", Name: "NBPF3 rs4654748", Ref: "C", Alt: "T",
		Aliases: []string{"alpl rs4654748"}},
	{Key: "slc23a1_v264m", Identifier: "rs33972313", Gene: "SLC23A1", Name: "SLC23A1 V264M", Ref: "C", Alt: "T",
		Notations: []string{"p.Val264Met", "V264M"}},

	// ===== IRON =====
	{Key: "hfe_c282y", Identifier: "rs1800562", Gene: "HFE", Name: "HFE C282Y", Ref: "G", Alt: "A",
		Notations: []string{"c.845G>A", "p.Cys282Tyr", "C282Y", "G845A"},
		Aliases:   []string{"hfe c282y", "hemochromatosis c282y"}},
	{Key: "hfe_h63d", Identifier: "rs1799945", Gene: "HFE", Name: "HFE H63D", Ref: "C", Alt: "G",
		Notations: []string{"c.187C>G", "p.His63Asp", "H63D", "C187G"},
		Aliases:   []string{"hfe h63d", "hemochromatosis h63d"}},
	{Key: "tmprss6_v736a", Identifier: "rs855791", Gene: "TMPRSS6", Name: "TMPRSS6 V736A", Ref: "G", Alt: "A",
		Notations: []string{"c.2207T>C", "p.Val736Ala", "V736A", "A736V"},
		Aliases:   []string{"tmprss6 v736a"}},

	// ===== LIPIDS / OMEGA-3 =====
	{Key: "apoe_rs429358", Identifier: "rs429358", Gene: "APOE", Name: "APOE rs429358 (C130R)", Ref: "T", Alt: "C",
		Notations: []string{"c.388T>C", "p.Cys130Arg", "C130R", "p.Cys112Arg", "C112R"},
		Aliases:   []string{"apoe4 snp", "apoe c112r"}},
	{Key: "apoe_rs7412", Identifier: "rs7412", Gene: "APOE", Name: "APOE rs7412 (R176C)", Ref: "C", Alt: "T",
		Notations: []string{"c.526C>T", "p.Arg176Cys", "R176C", "p.Arg158Cys", "R158C"},
		Aliases:   []string{"apoe2 snp", "apoe r158c"}},
	{Key: "fads1_rs174537", Identifier: "rs174537", Gene: "FADS1", Name: "FADS1 rs174537", Ref: "G", Alt: "T"},
	{Key: "fads2_rs1535", Identifier: "rs1535", Gene: "FADS2", Name: "FADS2 rs1535", Ref: "A", Alt: "G"},
	{Key: "pparg_p12a", Identifier: "rs1801282", Gene: "PPARG", Name: "PPARG Pro12Ala", Ref: "C", Alt: "G",
		Notations: []string{"c.34C>G", "p.Pro12Ala", "P12A"},
		Aliases:   []string{"pparg pro12ala", "pparg p12a"}},

	// ===== METABOLISM / DETOX =====
	{Key: "fto_rs9939609", Identifier: "rs9939609", Gene: "FTO", Name: "FTO rs9939609", Ref: "T", Alt: "A"},
	{Key: "tcf7l2_rs7903146", Identifier: "rs7903146", Gene: "TCF7L2", Name: "TCF7L2 rs7903146", Ref: "C", Alt: "T"},
	{Key: "cyp1a2_1f", Identifier: "rs762551", Gene: "CYP1A2", Name: "CYP1A2*1F", Ref: "C", Alt: "A",
		Notations: []string{"-163C>A", "c.-163C>A", "C-163A"},
		Aliases:   []string{"cyp1a2*1f", "cyp1a2 1f", "caffeine metabolism"}},
	{Key: "sod2_v16a", Identifier: "rs4880", Gene: "SOD2", Name: "SOD2 Ala16Val", Ref: "A", Alt: "G",
		Notations: []string{"c.47T>C", "p.Val16Ala", "V16A", "Ala16Val", "A16V"},
		Aliases:   []string{"sod2 ala16val", "sod2 v16a", "mnsod ala16val"}},
	{Key: "gstp1_i105v", Identifier: "rs1695", Gene: "GSTP1", Name: "GSTP1 Ile105Val", Ref: "A", Alt: "G",
		Notations: []string{"c.313A>G", "p.Ile105Val", "I105V", "A313G"},
		Aliases:   []string{"gstp1 ile105val", "gstp1 i105v"}},
	{Key: "nqo1_p187s", Identifier: "rs1800566", Gene: "NQO1", Name: "NQO1 P187S", Ref: "G", Alt: "A",
		Notations: []string{"c.559C>T", "p.Pro187Ser", "P187S", "C609T"},
		Aliases:   []string{"nqo1 p187s", "nqo1 c609t"}},
	{Key: "lct_c13910t", Identifier: "rs4988235", Gene: "LCT", Name: "LCT C-13910T", Ref: "G", Alt: "A",
		Notations: []string{"C-13910T", "-13910C>T"},
		Aliases:   []string{"lct 13910", "lactase persistence", "lct c-13910t"}},
	{Key: "ace_rs4343", Identifier: "rs4343", Gene: "ACE", Name: "ACE rs4343", Ref: "G", Alt: "A",
		Notations: []string{"c.2328A>G", "A2350G"}},
	{Key: "adrb2_r16g", Identifier: "rs1042713", Gene: "ADRB2", Name: "ADRB2 Arg16Gly", Ref: "G", Alt: "A",
		Notations: []string{"c.46A>G", "p.Arg16Gly", "R16G", "Gly16Arg"},
		Aliases:   []string{"adrb2 arg16gly", "adrb2 r16g"}},
}
