// Package schema names the customer table's columns and the role each one
// plays in generation, corruption, cleaning and modelling.
package schema

// Column names, in table order.
const (
	CustomerID            = "CustomerID"
	Age                   = "Age"
	Gender                = "Gender"
	ContractType          = "ContractType"
	MonthlyCharges        = "MonthlyCharges"
	Tenure                = "Tenure"
	TechSupport           = "TechSupport"
	InternetService       = "InternetService"
	PaperlessBilling      = "PaperlessBilling"
	PaymentMethod         = "PaymentMethod"
	Churn                 = "Churn"
	TotalCharges          = "TotalCharges"
	AverageMonthlyCharges = "AverageMonthlyCharges"
	CustomerLifetimeValue = "CustomerLifetimeValue"
	MonthlyChargesTenure  = "MonthlyCharges_Tenure"
	AgeTenure             = "Age_Tenure"
)

// Unknown is the sentinel written by the inconsistency injector.
const Unknown = "Unknown"

// Categorical domains.
var (
	GenderValues          = []string{"Male", "Female"}
	ContractTypeValues    = []string{"Month-to-month", "One year", "Two year"}
	YesNoValues           = []string{"Yes", "No"}
	InternetServiceValues = []string{"DSL", "Fiber optic", "No"}
	PaymentMethodValues   = []string{"Electronic check", "Mailed check", "Bank transfer", "Credit card"}
)

// Column roles.
var (
	// NumericColumns are mean-imputed.
	NumericColumns = []string{Age, MonthlyCharges, TotalCharges, Tenure, AverageMonthlyCharges, CustomerLifetimeValue}

	// CategoricalColumns are mode-imputed and label-encoded.
	CategoricalColumns = []string{Gender, ContractType, TechSupport, InternetService, PaperlessBilling, PaymentMethod}

	// OutlierColumns receive extreme values.
	OutlierColumns = []string{Age, MonthlyCharges, TotalCharges, Tenure}

	// InconsistencyColumns receive the Unknown sentinel.
	InconsistencyColumns = []string{Gender, ContractType, InternetService, PaymentMethod}

	// HistogramColumns are drawn in the data quality histogram grid.
	HistogramColumns = []string{Age, MonthlyCharges, TotalCharges, Tenure}

	// ProtectedColumns never receive missing values.
	ProtectedColumns = []string{CustomerID, Churn}
)

// FeatureColumns lists the model inputs in matrix column order.
var FeatureColumns = []string{
	Age, Gender, ContractType, MonthlyCharges, Tenure, TechSupport,
	InternetService, PaperlessBilling, PaymentMethod, TotalCharges,
	AverageMonthlyCharges, CustomerLifetimeValue, MonthlyChargesTenure, AgeTenure,
}

// IsProtected reports whether column is exempt from missing-value injection.
func IsProtected(column string) bool {
	for _, c := range ProtectedColumns {
		if c == column {
			return true
		}
	}
	return false
}
