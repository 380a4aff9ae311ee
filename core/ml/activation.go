package ml

import "math"

// Logistic is the squashing function 1/(1+e^(-λx)).
func Logistic(x, lambda float64) float64 {
	return 1 / (1 + math.Exp(-lambda*x))
}

// LogisticDerivative is d/dx of Logistic: λe^(-λx)/(1+e^(-λx))^2.
func LogisticDerivative(x, lambda float64) float64 {
	e := math.Exp(-lambda * x)
	if math.IsInf(e, 1) {
		// deep saturation, the slope has underflowed to zero
		return 0
	}
	return (lambda * e) / ((1 + e) * (1 + e))
}

// Bipolar rescales a (0,1) activation to (-1,1).
func Bipolar(p float64) float64 {
	return 2*p - 1
}

// Sign is the threshold function, zero counts as positive.
func Sign(x float64) Type_Class {
	if x >= 0 {
		return PN
	}
	return NN
}
