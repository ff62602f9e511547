package options

// Option names understood by the manager and the drivers.
const (
	OptDataFile        = "data-file"
	OptAction          = "action"
	OptNominal         = "nominal"
	OptNoFrequency     = "no-frequency"
	OptShortModel      = "short-model"
	OptStartModel      = "start-model"
	OptReferenceModel  = "reference-model"
	OptDDFMethod       = "ddf-method"
	OptInverseNotation = "inverse-notation"
	OptFilter          = "filter"
	OptSortBy          = "sort-by"
	OptSortDirection   = "sort-direction"
	OptSearchDirection = "search-direction"
	OptSearchWidth     = "search-width"
	OptSearchLevels    = "search-levels"
	OptPercentCorrect  = "percent-correct"
	OptBPStatistics    = "bp-statistics"
	OptIPFMaxIter      = "ipf-maxit"
	OptIPFMaxDev       = "ipf-maxdev"
	OptHTML            = "html"
)

// NewStandard returns an option table with every definition the analysis uses.
func NewStandard() *Options {
	o := New()
	free := func(d *Def) { d.AddValue("", "") }
	numeric := func(d *Def) { d.AddValue(NumericValue, "") }

	data := o.AddDef(OptDataFile, "", "input data file", false)
	free(data)
	o.SetDefaultDef(data)

	o.AddDef(OptAction, "a", "what to run", false).
		AddValue("fit", "fit the listed models").
		AddValue("search", "search the lattice")
	free(o.AddDef(OptNominal, "", "variable declaration", true))
	o.AddDef(OptNoFrequency, "", "data rows carry no frequency column", false)
	free(o.AddDef(OptShortModel, "m", "model to fit", true))
	free(o.AddDef(OptStartModel, "start", "search start model", false))
	free(o.AddDef(OptReferenceModel, "r", "top, bottom, default or a model name", false))
	o.AddDef(OptDDFMethod, "ddf", "degrees of freedom difference method", false).
		AddValue("0", "difference of model degrees of freedom").
		AddValue("1", "count every differing interaction term")
	o.AddDef(OptInverseNotation, "inv", "print relations by the variables they omit", false)
	free(o.AddDef(OptFilter, "f", "attribute, operator and threshold, e.g. alpha < 0.05", false))
	free(o.AddDef(OptSortBy, "s", "statistic to rank models by", false))
	o.AddDef(OptSortDirection, "sd", "ranking direction", false).
		AddValue("ascending", "smallest first").
		AddValue("descending", "largest first")
	o.AddDef(OptSearchDirection, "d", "search direction", false).
		AddValue("down", "from the top toward the bottom")
	numeric(o.AddDef(OptSearchWidth, "w", "models kept per level", false))
	numeric(o.AddDef(OptSearchLevels, "l", "levels to search", false))
	o.AddDef(OptPercentCorrect, "pc", "compute percent correct", false)
	o.AddDef(OptBPStatistics, "bp", "compute BP statistics", false)
	numeric(o.AddDef(OptIPFMaxIter, "", "IPF iteration limit", false))
	numeric(o.AddDef(OptIPFMaxDev, "", "IPF convergence tolerance", false))
	o.AddDef(OptHTML, "", "HTML output", false)
	return o
}
