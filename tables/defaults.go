package tables

import "strings"

// wikipediaLanguages lists the language editions whose codes are at most
// three lower-case letters.
const wikipediaLanguages = `
aa ab ace ady af ak als alt am ami an ang anp ar arc ary arz as ast atj av avk
awa ay az azb ba ban bar bbc bcl be bg bh bi bjn blk bm bn bo bpy br bs bug bxr
ca cbk cdo ce ceb ch cho chr chy ckb co cr crh cs csb cu cv cy da dag de din diq
dsb dty dv dz ee el eml en eo es et eu ext fa fat ff fi fj fo fon fr frp frr fur
fy ga gag gan gcr gd gl glk gn gom gor got gpe gu guc gur guw gv ha hak haw he hi
hif ho hr hsb ht hu hy hyw hz ia id ie ig ii ik ilo inh io is it iu ja jam jbo jv
ka kaa kab kbd kbp kcg kg ki kj kk kl km kn ko koi kr krc ks ksh ku kv kw ky la
lad lb lbe lez lfn lg li lij lld lmo ln lo lrc lt ltg lv mad mai mdf mg mh mhr mi
min mk ml mn mni mnw mr mrj ms mt mus mwl my myv mzn na nah nap nds ne new ng nia
nl nn no nov nqo nrm nso nv ny oc olo om or os pa pag pam pap pcd pcm pdc pfl pi
pih pl pms pnb pnt ps pt pwn qu rm rmy rn ro ru rue rw sa sah sat sc scn sco sd se
sg sh shi shn si sk skr sl sm smn sn so sq sr srn ss st stq su sv sw szl szy ta
tay tcy te tet tg th ti tk tl tly tn to tpi tr trv ts tt tum tw ty tyv udm ug uk
ur uz ve vec vep vi vls vo wa war wo wuu xal xh xmf yi yo za zea zh zu
`

// importanceOrder ranks editions by size; the best-link search falls back to
// it after the caller's own languages.
var importanceOrder = []string{
	"en", "de", "fr", "es", "it", "pl", "ru", "ja", "zh", "pt", "nl", "sv", "uk",
	"ca", "ar", "fa", "vi", "ko", "fi", "cs", "hu", "no", "tr", "id", "he", "ro",
	"sr", "da", "bg", "el", "eo", "et", "eu", "sk", "lt", "ms", "hy", "sl", "hr",
	"ce", "ceb", "war", "uz", "kk", "be", "gl", "ta", "az", "ur", "th", "hi", "ka",
	"la", "bn", "lv", "mk", "af", "cy", "sq", "bs", "tt",
}

var countryLanguages = map[string]string{
	"ad": "ca", "ar": "es", "at": "de", "au": "en", "ba": "bs", "bg": "bg",
	"br": "pt", "by": "be", "ca": "en", "cl": "es", "cn": "zh", "co": "es",
	"cz": "cs", "de": "de", "dk": "da", "ee": "et", "eg": "ar", "es": "es",
	"fi": "fi", "fr": "fr", "gb": "en", "ge": "ka", "gr": "el", "hr": "hr",
	"hu": "hu", "id": "id", "ie": "en", "il": "he", "in": "en", "ir": "fa",
	"is": "is", "it": "it", "jp": "ja", "kr": "ko", "kz": "kk", "li": "de",
	"lt": "lt", "lv": "lv", "mk": "mk", "mx": "es", "my": "ms", "nl": "nl",
	"no": "no", "nz": "en", "pe": "es", "pl": "pl", "pt": "pt", "ro": "ro",
	"rs": "sr", "ru": "ru", "sa": "ar", "se": "sv", "si": "sl", "sk": "sk",
	"th": "th", "tr": "tr", "tw": "zh", "ua": "uk", "us": "en", "uy": "es",
	"vn": "vi", "za": "en",
}

func blacklistEntry(id, name, prefix string, expected map[string]string) BlacklistEntry {
	return BlacklistEntry{ID: id, Name: name, Prefix: prefix, ExpectedTags: expected}
}

var defaultBlacklist = []BlacklistEntry{
	blacklistEntry("Q37158", "Starbucks", "brand:", map[string]string{"amenity": "cafe"}),
	blacklistEntry("Q38076", "McDonald's", "brand:", map[string]string{"amenity": "fast_food"}),
	blacklistEntry("Q177054", "Burger King", "brand:", map[string]string{"amenity": "fast_food"}),
	blacklistEntry("Q524757", "KFC", "brand:", map[string]string{"amenity": "fast_food"}),
	blacklistEntry("Q244457", "Subway", "brand:", map[string]string{"amenity": "fast_food"}),
	blacklistEntry("Q151954", "Lidl", "brand:", map[string]string{"shop": "supermarket"}),
	blacklistEntry("Q125054", "Aldi", "brand:", map[string]string{"shop": "supermarket"}),
	blacklistEntry("Q487494", "Tesco", "brand:", map[string]string{"shop": "supermarket"}),
	blacklistEntry("Q217599", "Carrefour", "brand:", map[string]string{"shop": "supermarket"}),
	blacklistEntry("Q54078", "IKEA", "brand:", map[string]string{"shop": "furniture"}),
	blacklistEntry("Q152057", "BP", "brand:", map[string]string{"amenity": "fuel"}),
	blacklistEntry("Q154950", "Shell", "brand:", map[string]string{"amenity": "fuel"}),
}

// Default returns the built-in tables. Every call returns fresh maps.
func Default() *Tables {
	t := &Tables{
		Languages:        make(map[string]bool),
		Importance:       append([]string(nil), importanceOrder...),
		Blacklist:        make(map[string]BlacklistEntry, len(defaultBlacklist)),
		CountryLanguages: make(map[string]string, len(countryLanguages)),
	}
	for _, code := range strings.Fields(wikipediaLanguages) {
		t.Languages[code] = true
	}
	for _, e := range defaultBlacklist {
		t.Blacklist[e.ID] = e
	}
	for k, v := range countryLanguages {
		t.CountryLanguages[k] = v
	}
	return t
}
