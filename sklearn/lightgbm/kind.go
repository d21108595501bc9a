package lightgbm

import (
	"fmt"

	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
)

// Kind is the closed set of model shapes the exporter understands:
// Regression, BinaryClassifier and MulticlassClassifier. It is decided once
// by Model.Kind and passed explicitly to every stage that needs it.
type Kind interface {
	// NumClasses is 1 for regression, 2 for binary and K for multiclass.
	NumClasses() int
	String() string
	isKind()
}

// Regression sums tree outputs; the sum is the prediction.
type Regression struct{}

// BinaryClassifier feeds the summed margin through a logistic function.
type BinaryClassifier struct{}

// MulticlassClassifier keeps one tree sum per class and applies softmax.
type MulticlassClassifier struct {
	K int
}

func (Regression) NumClasses() int             { return 1 }
func (Regression) String() string              { return "regression" }
func (Regression) isKind()                     {}
func (BinaryClassifier) NumClasses() int       { return 2 }
func (BinaryClassifier) String() string        { return "binary" }
func (BinaryClassifier) isKind()               {}
func (k MulticlassClassifier) NumClasses() int { return k.K }
func (k MulticlassClassifier) String() string  { return fmt.Sprintf("multiclass(%d)", k.K) }
func (MulticlassClassifier) isKind()           {}

// IsClassifier reports whether k is a binary or multiclass classifier.
func IsClassifier(k Kind) bool {
	switch k.(type) {
	case BinaryClassifier, MulticlassClassifier:
		return true
	default:
		return false
	}
}

// Kind classifies the model. Objectives whose prediction is not a plain tree
// sum, a logistic of the sum, or a softmax over per-class sums are rejected.
func (m *Model) Kind() (Kind, error) {
	obj := string(m.Objective)
	if m.AverageOutput {
		return nil, errors.NewUnsupportedModelKindError(obj, m.NumClass, "averaged (random forest) output is not a sum of trees")
	}

	switch m.Objective {
	case RegressionL2, RegressionL1, RegressionHuber, RegressionFair, RegressionQuantile, RegressionMAPE:
		if m.NumTreePerIteration != 1 {
			return nil, errors.NewUnsupportedModelKindError(obj, m.NumClass, "regression with more than one tree per iteration")
		}
		return Regression{}, nil

	case BinaryLogistic, BinaryCrossEntropy:
		if m.NumTreePerIteration != 1 {
			return nil, errors.NewUnsupportedModelKindError(obj, m.NumClass, "binary model with more than one tree per iteration")
		}
		return BinaryClassifier{}, nil

	case MulticlassSoftmax:
		if m.NumClass <= 2 {
			return nil, errors.NewUnsupportedModelKindError(obj, m.NumClass, "multiclass model needs more than two classes")
		}
		if m.NumTreePerIteration != m.NumClass {
			return nil, errors.NewUnsupportedModelKindError(obj, m.NumClass,
				fmt.Sprintf("num_tree_per_iteration=%d does not match num_class", m.NumTreePerIteration))
		}
		return MulticlassClassifier{K: m.NumClass}, nil

	case RegressionPoisson, RegressionGamma, RegressionTweedie:
		return nil, errors.NewUnsupportedModelKindError(obj, m.NumClass, "log-link regression applies exp() to the tree sum")
	case MulticlassOVA:
		return nil, errors.NewUnsupportedModelKindError(obj, m.NumClass, "one-vs-all multiclass applies an independent sigmoid per class")
	case LambdaRank, RankXENDCG:
		return nil, errors.NewUnsupportedModelKindError(obj, m.NumClass, "ranking objectives are not supported")
	default:
		return nil, errors.NewUnsupportedModelKindError(obj, m.NumClass, "unknown objective")
	}
}
