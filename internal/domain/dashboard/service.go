package dashboard

// DashboardService renders tables and chart series from a session view
type DashboardService interface {
	// List filters, sorts and paginates the employee table
	List(view View, req ListRequest) (ListResponse, error)

	// Summary returns headline figures over the employees matching query
	Summary(view View, query string) Summary

	// Charts returns the department and monthly series
	Charts(view View, query string) Charts

	// Detail returns one employee with the full monthly history
	Detail(view View, name string) (EmployeeDetail, error)
}
