package eligibility

// usStates lists full state names used for state detection in grant names and
// source labels.
var usStates = []string{
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado",
	"connecticut", "delaware", "florida", "georgia", "hawaii", "idaho",
	"illinois", "indiana", "iowa", "kansas", "kentucky", "louisiana",
	"maine", "maryland", "massachusetts", "michigan", "minnesota",
	"mississippi", "missouri", "montana", "nebraska", "nevada",
	"new hampshire", "new jersey", "new mexico", "new york", "north carolina",
	"north dakota", "ohio", "oklahoma", "oregon", "pennsylvania",
	"rhode island", "south carolina", "south dakota", "tennessee", "texas",
	"utah", "vermont", "virginia", "washington", "west virginia",
	"wisconsin", "wyoming",
}

// stateAbbreviations maps full state names to the postal abbreviations that
// show up in government URLs (nc.gov, state.tx.us, ...). Ohio keeps its full
// name because "oh" is too short to match safely inside URLs.
var stateAbbreviations = map[string]string{
	"ohio": "ohio", "texas": "tx", "california": "ca", "florida": "fl",
	"new york": "ny", "north carolina": "nc", "georgia": "ga",
	"pennsylvania": "pa", "illinois": "il", "michigan": "mi",
	"virginia": "va", "washington": "wa", "arizona": "az",
	"massachusetts": "ma", "tennessee": "tn", "indiana": "in",
	"missouri": "mo", "maryland": "md", "wisconsin": "wi",
	"colorado": "co", "minnesota": "mn", "south carolina": "sc",
	"alabama": "al", "louisiana": "la", "kentucky": "ky",
	"oregon": "or", "oklahoma": "ok", "connecticut": "ct",
	"iowa": "ia", "utah": "ut", "nevada": "nv", "arkansas": "ar",
	"mississippi": "ms", "kansas": "ks", "new mexico": "nm",
	"nebraska": "ne", "west virginia": "wv", "idaho": "id",
	"hawaii": "hi", "new hampshire": "nh", "maine": "me",
	"montana": "mt", "rhode island": "ri", "delaware": "de",
	"south dakota": "sd", "north dakota": "nd", "alaska": "ak",
	"vermont": "vt", "wyoming": "wy",
}

// federalIndicators mark grants available nationwide through federal programs.
var federalIndicators = []string{
	"federal", "fema", "national", "nationwide", "u.s.", "united states",
	"usda", "dhs",
}

// nationalFoundations are known foundations that fund departments in every
// state, plus generic foundation markers.
var nationalFoundations = []string{
	"firehouse subs", "gary sinise", "leary firefighters", "spirit of blue",
	"100 club", "nfff", "national fallen firefighters", "iafc", "nvfc",
	"foundation", "national volunteer",
}
