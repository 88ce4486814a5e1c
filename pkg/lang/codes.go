// Package lang holds the table of supported language codes.
//
// Codes are FLORES-200 style identifiers ("eng_Latn", "zho_Hans"). They are
// treated as opaque strings everywhere else in the system; the only check ever
// performed is membership in this table. An unknown code means "no translation
// available", never an error.
package lang

import "sort"

// Fallback is the preferred language assumed for users with no stored
// preference.
const Fallback = "eng_Latn"

// names maps each supported code to its display name.
var names = map[string]string{
	"ace_Latn": "Acehnese (Latin script)",
	"afr_Latn": "Afrikaans",
	"amh_Ethi": "Amharic",
	"arb_Arab": "Modern Standard Arabic",
	"ben_Beng": "Bengali",
	"bul_Cyrl": "Bulgarian",
	"cat_Latn": "Catalan",
	"ces_Latn": "Czech",
	"ckb_Arab": "Central Kurdish",
	"dan_Latn": "Danish",
	"deu_Latn": "German",
	"ell_Grek": "Greek",
	"eng_Latn": "English",
	"est_Latn": "Estonian",
	"fin_Latn": "Finnish",
	"fra_Latn": "French",
	"gaz_Latn": "West Central Oromo",
	"hau_Latn": "Hausa",
	"heb_Hebr": "Hebrew",
	"hin_Deva": "Hindi",
	"hun_Latn": "Hungarian",
	"ibo_Latn": "Igbo",
	"ind_Latn": "Indonesian",
	"ita_Latn": "Italian",
	"jpn_Jpan": "Japanese",
	"kin_Latn": "Kinyarwanda",
	"kor_Hang": "Korean",
	"lin_Latn": "Lingala",
	"lit_Latn": "Lithuanian",
	"mal_Mlym": "Malayalam",
	"nld_Latn": "Dutch",
	"nob_Latn": "Norwegian Bokmal",
	"nya_Latn": "Nyanja",
	"pol_Latn": "Polish",
	"por_Latn": "Portuguese",
	"ron_Latn": "Romanian",
	"rus_Cyrl": "Russian",
	"sna_Latn": "Shona",
	"som_Latn": "Somali",
	"sot_Latn": "Southern Sotho",
	"spa_Latn": "Spanish",
	"swe_Latn": "Swedish",
	"swh_Latn": "Swahili",
	"tam_Taml": "Tamil",
	"tha_Thai": "Thai",
	"tur_Latn": "Turkish",
	"ukr_Cyrl": "Ukrainian",
	"urd_Arab": "Urdu",
	"vie_Latn": "Vietnamese",
	"wol_Latn": "Wolof",
	"xho_Latn": "Xhosa",
	"yor_Latn": "Yoruba",
	"zho_Hans": "Chinese (Simplified)",
	"zho_Hant": "Chinese (Traditional)",
	"zul_Latn": "Zulu",
}

// IsValid reports whether code is in the supported table.
func IsValid(code string) bool {
	_, ok := names[code]
	return ok
}

// Name returns the display name for a code, or the empty string for unknown
// codes.
func Name(code string) string {
	return names[code]
}

// Codes returns every supported code in sorted order.
func Codes() []string {
	out := make([]string, 0, len(names))
	for code := range names {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
