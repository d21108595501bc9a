// Package pmml is a PMML 4.4 document object model covering the elements an
// exported tree ensemble needs. Struct tags reproduce the standard's element
// and attribute names, so encoding/xml produces a conforming document.
package pmml

import (
	"encoding/xml"
)

// Version and namespace written on the root element.
const (
	Version   = "4.4"
	Namespace = "http://www.dmg.org/PMML-4_4"
)

// PMML is the document root.
type PMML struct {
	XMLName        xml.Name        `xml:"PMML"`
	Xmlns          string          `xml:"xmlns,attr"`
	Version        string          `xml:"version,attr"`
	Header         *Header         `xml:"Header"`
	DataDictionary *DataDictionary `xml:"DataDictionary"`
	MiningModel    *MiningModel    `xml:"MiningModel"`
}

// New returns an empty document with version and namespace set.
func New() *PMML {
	return &PMML{Xmlns: Namespace, Version: Version}
}

// Header describes who produced the document.
type Header struct {
	Copyright   string       `xml:"copyright,attr,omitempty"`
	Description string       `xml:"description,attr,omitempty"`
	Application *Application `xml:"Application"`
	Timestamp   *Timestamp   `xml:"Timestamp"`
}

// Application names the producing tool.
type Application struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr,omitempty"`
}

// Timestamp is the free-text creation time.
type Timestamp struct {
	Value string `xml:",chardata"`
}

// DataDictionary declares every field the model consumes or predicts.
type DataDictionary struct {
	NumberOfFields int         `xml:"numberOfFields,attr"`
	DataFields     []DataField `xml:"DataField"`
}

// DataField is one entry of the data dictionary.
type DataField struct {
	Name     string   `xml:"name,attr"`
	OpType   OpType   `xml:"optype,attr"`
	DataType DataType `xml:"dataType,attr"`
	Values   []Value  `xml:"Value"`
}

// Value is an admissible value of a categorical field.
type Value struct {
	Value string `xml:"value,attr"`
}

// MiningSchema lists the fields a model reads.
type MiningSchema struct {
	MiningFields []MiningField `xml:"MiningField"`
}

// MiningField references a field by name.
type MiningField struct {
	Name      string    `xml:"name,attr"`
	UsageType UsageType `xml:"usageType,attr,omitempty"`
}

// Names returns the field names in order.
func (s *MiningSchema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.MiningFields))
	for i, f := range s.MiningFields {
		names[i] = f.Name
	}
	return names
}

// Output declares result fields of a model.
type Output struct {
	OutputFields []OutputField `xml:"OutputField"`
}

// OutputField is one declared result.
type OutputField struct {
	Name          string        `xml:"name,attr"`
	OpType        OpType        `xml:"optype,attr,omitempty"`
	DataType      DataType      `xml:"dataType,attr"`
	Feature       ResultFeature `xml:"feature,attr"`
	Value         string        `xml:"value,attr,omitempty"`
	IsFinalResult *bool         `xml:"isFinalResult,attr,omitempty"`
}

// MiningModel combines sub-models through a Segmentation.
type MiningModel struct {
	ModelName    string        `xml:"modelName,attr,omitempty"`
	FunctionName FunctionName  `xml:"functionName,attr"`
	MiningSchema *MiningSchema `xml:"MiningSchema"`
	Output       *Output       `xml:"Output"`
	Segmentation *Segmentation `xml:"Segmentation"`
}

// Segmentation is an ordered set of segments and the rule combining them.
type Segmentation struct {
	MultipleModelMethod MultipleModelMethod `xml:"multipleModelMethod,attr"`
	Segments            []*Segment          `xml:"Segment"`
}

// Segment wraps exactly one of TreeModel, MiningModel or RegressionModel.
// Every segment exported here is guarded by True.
type Segment struct {
	ID              int              `xml:"id,attr"`
	True            *True            `xml:"True"`
	TreeModel       *TreeModel       `xml:"TreeModel"`
	MiningModel     *MiningModel     `xml:"MiningModel"`
	RegressionModel *RegressionModel `xml:"RegressionModel"`
}

// TreeModel is a single decision tree.
type TreeModel struct {
	ModelName            string               `xml:"modelName,attr,omitempty"`
	FunctionName         FunctionName         `xml:"functionName,attr"`
	MissingValueStrategy MissingValueStrategy `xml:"missingValueStrategy,attr,omitempty"`
	NoTrueChildStrategy  NoTrueChildStrategy  `xml:"noTrueChildStrategy,attr,omitempty"`
	SplitCharacteristic  SplitCharacteristic  `xml:"splitCharacteristic,attr,omitempty"`
	MiningSchema         *MiningSchema        `xml:"MiningSchema"`
	Node                 *Node                `xml:"Node"`
}

// RegressionModel is used as the trailing combiner of classifiers.
type RegressionModel struct {
	ModelName           string              `xml:"modelName,attr,omitempty"`
	FunctionName        FunctionName        `xml:"functionName,attr"`
	NormalizationMethod NormalizationMethod `xml:"normalizationMethod,attr,omitempty"`
	MiningSchema        *MiningSchema       `xml:"MiningSchema"`
	Output              *Output             `xml:"Output"`
	RegressionTables    []RegressionTable   `xml:"RegressionTable"`
}

// RegressionTable computes intercept + sum(coefficient * field).
type RegressionTable struct {
	Intercept         float64            `xml:"intercept,attr"`
	TargetCategory    string             `xml:"targetCategory,attr,omitempty"`
	NumericPredictors []NumericPredictor `xml:"NumericPredictor"`
}

// NumericPredictor is one linear term.
type NumericPredictor struct {
	Name        string  `xml:"name,attr"`
	Exponent    int     `xml:"exponent,attr,omitempty"`
	Coefficient float64 `xml:"coefficient,attr"`
}

// True is the always-true predicate.
type True struct{}

// SimplePredicate compares one field with a constant.
type SimplePredicate struct {
	Field    string   `xml:"field,attr"`
	Operator Operator `xml:"operator,attr"`
	Value    string   `xml:"value,attr"`
}
