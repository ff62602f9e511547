package model

// Names of the statistics a model can carry.
const (
	AttrH              = "h"
	AttrT              = "t"
	AttrDF             = "df"
	AttrDDF            = "ddf"
	AttrExplainedI     = "explained_i"
	AttrUnexplainedI   = "unexplained_i"
	AttrInformation    = "information"
	AttrLR             = "lr"
	AttrAlpha          = "alpha"
	AttrDLR            = "dlr"
	AttrP2             = "p2"
	AttrP2Alpha        = "p2_alpha"
	AttrAIC            = "aic"
	AttrBIC            = "bic"
	AttrDAIC           = "daic"
	AttrDBIC           = "dbic"
	AttrCondH          = "cond_h"
	AttrCondPctDH      = "cond_pct_dh"
	AttrPctCorrectData = "pct_correct_data"
	AttrBPH            = "bp_h"
	AttrBPT            = "bp_t"
	AttrBPInformation  = "bp_information"
	AttrBPAIC          = "bp_aic"
	AttrBPBIC          = "bp_bic"
	AttrBPDAIC         = "bp_daic"
	AttrBPDBIC         = "bp_dbic"
	AttrIPFIterations  = "ipf_iterations"
)

// AttributeNames lists every statistic name in report order.
var AttributeNames = []string{
	AttrH, AttrT, AttrDF, AttrDDF,
	AttrExplainedI, AttrUnexplainedI, AttrInformation,
	AttrLR, AttrAlpha, AttrDLR, AttrP2, AttrP2Alpha,
	AttrAIC, AttrBIC, AttrDAIC, AttrDBIC,
	AttrCondH, AttrCondPctDH, AttrPctCorrectData,
	AttrBPH, AttrBPT, AttrBPInformation, AttrBPAIC, AttrBPBIC, AttrBPDAIC, AttrBPDBIC,
	AttrIPFIterations,
}

// ReferenceAttributes depend on the reference models and are dropped when those are
// rebuilt.
var ReferenceAttributes = []string{
	AttrDDF, AttrExplainedI, AttrUnexplainedI, AttrInformation,
	AttrDLR, AttrAlpha, AttrDAIC, AttrDBIC,
	AttrBPInformation, AttrBPDAIC, AttrBPDBIC,
}

// IsAttribute reports whether name is a known statistic.
func IsAttribute(name string) bool {
	for _, n := range AttributeNames {
		if n == name {
			return true
		}
	}
	return false
}
