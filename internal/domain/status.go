package domain

// EvaluateLoanStatus derives the lifecycle status of l. last is the status
// of the payment that triggered the evaluation; pass "" when there is none.
func EvaluateLoanStatus(l *Loan, last PaymentStatus) LoanStatus {
	switch {
	case l.TotalPaid.GreaterThanOrEqual(l.TotalDue):
		return LoanStatusPaid
	case l.HasArrears():
		return LoanStatusDelinquent
	case last == PaymentStatusLate || last == PaymentStatusLateAndPartial:
		return LoanStatusDelinquent
	case last == PaymentStatusPartial:
		return LoanStatusPartiallyPaid
	default:
		return LoanStatusActive
	}
}

// EvaluateClientStatus derives a client's status from how many of its loans
// are delinquent.
func EvaluateClientStatus(delinquentLoans int) ClientStatus {
	if delinquentLoans > 0 {
		return ClientStatusDelinquent
	}
	return ClientStatusActive
}
