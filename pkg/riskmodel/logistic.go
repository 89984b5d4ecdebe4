package riskmodel

import (
	"errors"
	"fmt"
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/optimize"

	"github.com/mindfuljournal/analyzer/internal"
)

const ClassWeightBalanced = "balanced"

var log = internal.GetLogger()

var ErrSingleClass = errors.New("training labels must contain both classes")

// LogisticRegression is an L2-regularized binary logistic regression solved with L-BFGS.
//
// The minimized objective is
//
//	(1/S) * sum_i sw_i * logloss(y_i, w.x_i + b) + ||w||^2 / (2*C*S)
//
// where sw are the per-sample class weights and S their sum. The intercept is not
// regularized. Coef and Intercept are read-only once Fit returns.
type LogisticRegression struct {
	C           float64
	MaxIter     int
	Tol         float64
	ClassWeight string

	Coef      []float64
	Intercept float64
	NIter     int
	Converged bool
}

func NewLogisticRegression(maxIter int, classWeight string) *LogisticRegression {
	return &LogisticRegression{
		C:           1.0,
		MaxIter:     maxIter,
		Tol:         1e-4,
		ClassWeight: classWeight,
	}
}

// BalancedClassWeights weights each class by n / (2 * count), correcting label imbalance.
func BalancedClassWeights(y []int) ([2]float64, error) {
	var counts [2]int
	for _, label := range y {
		if label != 0 && label != 1 {
			return [2]float64{}, fmt.Errorf("invalid label %d, expected 0 or 1", label)
		}
		counts[label]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return [2]float64{}, ErrSingleClass
	}

	n := float64(len(y))
	return [2]float64{
		n / (2 * float64(counts[0])),
		n / (2 * float64(counts[1])),
	}, nil
}

type logisticObjective struct {
	x         []SparseVector
	y         []int
	sw        []float64
	swSum     float64
	l2        float64
	nFeatures int
}

// evaluate returns the objective at theta and writes its gradient into grad.
// theta holds the coefficients followed by the intercept.
func (o *logisticObjective) evaluate(theta, grad []float64) float64 {
	w := theta[:o.nFeatures]
	b := theta[o.nFeatures]

	copy(grad[:o.nFeatures], w)
	vek.MulNumber_Inplace(grad[:o.nFeatures], o.l2)
	grad[o.nFeatures] = 0

	loss := 0.5 * o.l2 * vek.Dot(w, w)
	for i, row := range o.x {
		z := sparseDot(w, row) + b
		weight := o.sw[i] / o.swSum
		if o.y[i] == 1 {
			loss += weight * logOnePlusExp(-z)
		} else {
			loss += weight * logOnePlusExp(z)
		}

		d := weight * (sigmoid(z) - float64(o.y[i]))
		for k, idx := range row.Indices {
			grad[idx] += d * row.Values[k]
		}
		grad[o.nFeatures] += d
	}

	return loss
}

// Fit trains on rows x with labels y in {0, 1}.
func (m *LogisticRegression) Fit(x []SparseVector, y []int, nFeatures int) error {
	if len(x) != len(y) {
		return fmt.Errorf("got %d rows but %d labels", len(x), len(y))
	}
	if nFeatures <= 0 {
		return errors.New("number of features must be positive")
	}
	if m.C <= 0 {
		return fmt.Errorf("inverse regularization strength must be positive, got %v", m.C)
	}

	classWeights := [2]float64{1, 1}
	if m.ClassWeight == ClassWeightBalanced {
		cw, err := BalancedClassWeights(y)
		if err != nil {
			return err
		}
		classWeights = cw
	} else if _, err := BalancedClassWeights(y); err != nil {
		return err
	}

	obj := newLogisticObjective(x, y, nFeatures, classWeights, m.C)

	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			return obj.evaluate(theta, make([]float64, len(theta)))
		},
		Grad: func(grad, theta []float64) {
			obj.evaluate(theta, grad)
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: m.Tol,
		MajorIterations:   m.MaxIter,
	}

	result, err := optimize.Minimize(problem, make([]float64, nFeatures+1), settings, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("logistic regression solver failed: %w", err)
	}
	if err != nil {
		log.Warnf("logistic regression solver stopped early: %v", err)
	}

	m.Coef = append([]float64(nil), result.X[:nFeatures]...)
	m.Intercept = result.X[nFeatures]
	m.NIter = result.MajorIterations
	m.Converged = err == nil && converged(result.Status)

	return nil
}

func newLogisticObjective(
	x []SparseVector,
	y []int,
	nFeatures int,
	classWeights [2]float64,
	c float64,
) *logisticObjective {
	obj := &logisticObjective{
		x:         x,
		y:         y,
		sw:        make([]float64, len(y)),
		nFeatures: nFeatures,
	}
	for i, label := range y {
		obj.sw[i] = classWeights[label]
		obj.swSum += classWeights[label]
	}
	obj.l2 = 1 / (c * obj.swSum)
	return obj
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success,
		optimize.GradientThreshold,
		optimize.FunctionConvergence,
		optimize.MethodConverge:
		return true
	default:
		return false
	}
}

// DecisionFunction returns the signed distance w.x + b.
func (m *LogisticRegression) DecisionFunction(row SparseVector) float64 {
	return sparseDot(m.Coef, row) + m.Intercept
}

// PredictProba returns the probabilities of class 0 and class 1.
func (m *LogisticRegression) PredictProba(row SparseVector) [2]float64 {
	p := sigmoid(m.DecisionFunction(row))
	return [2]float64{1 - p, p}
}

// Predict returns 1 when the positive class is more likely than not.
func (m *LogisticRegression) Predict(row SparseVector) int {
	if m.DecisionFunction(row) > 0 {
		return 1
	}
	return 0
}

func sparseDot(dense []float64, row SparseVector) float64 {
	var sum float64
	for k, idx := range row.Indices {
		sum += dense[idx] * row.Values[k]
	}
	return sum
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// logOnePlusExp computes log(1 + e^t) without overflow.
func logOnePlusExp(t float64) float64 {
	if t > 0 {
		return t + math.Log1p(math.Exp(-t))
	}
	return math.Log1p(math.Exp(t))
}
