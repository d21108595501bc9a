// Package errors はエクスポータ全体のエラーハンドリングと警告システムを提供します。
// すべてのコンストラクタは cockroachdb/errors によりスタックトレースを付与します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("lgbm2pmml-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ThresholdPrecisionWarning は分岐閾値を固定小数点16桁で表すと値が変わる場合の警告です。
// 例えば 1e-20 は "0.0000000000000000" になり、分岐の向きが変わる可能性があります。
type ThresholdPrecisionWarning struct {
	Field     string
	Threshold float64
	Formatted string
}

func (w *ThresholdPrecisionWarning) Error() string {
	return fmt.Sprintf("threshold %g on field '%s' is serialized as %s and does not round-trip", w.Threshold, w.Field, w.Formatted)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ThresholdPrecisionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("field", w.Field).
		Float64("threshold", w.Threshold).
		Str("formatted", w.Formatted).
		Str("type", "ThresholdPrecisionWarning")
}

// NewThresholdPrecisionWarning は新しいThresholdPrecisionWarningを作成します。
func NewThresholdPrecisionWarning(field string, threshold float64, formatted string) *ThresholdPrecisionWarning {
	return &ThresholdPrecisionWarning{Field: field, Threshold: threshold, Formatted: formatted}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// UnsupportedModelKindError はモデルが回帰・二値分類・多クラス分類のいずれにも該当しない場合のエラーです。
type UnsupportedModelKindError struct {
	Objective string
	NumClass  int
	Reason    string
}

func (e *UnsupportedModelKindError) Error() string {
	return fmt.Sprintf("lgbm2pmml: unsupported model kind (objective=%q, num_class=%d): %s", e.Objective, e.NumClass, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedModelKindError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("objective", e.Objective).
		Int("num_class", e.NumClass).
		Str("reason", e.Reason).
		Str("type", "UnsupportedModelKindError")
}

// NewUnsupportedModelKindError は新しいUnsupportedModelKindErrorを作成し、スタックトレースを付与します。
func NewUnsupportedModelKindError(objective string, numClass int, reason string) error {
	err := &UnsupportedModelKindError{Objective: objective, NumClass: numClass, Reason: reason}
	return errors.WithStack(err)
}

// MalformedTreeError は木構造のレコードが葉でも分岐でもない、あるいは子の参照が壊れている場合のエラーです。
type MalformedTreeError struct {
	TreeIndex int
	Node      string // ノードの位置（例: "root.left.right" または "#12"）
	Reason    string
}

func (e *MalformedTreeError) Error() string {
	return fmt.Sprintf("lgbm2pmml: malformed tree %d at node %s: %s", e.TreeIndex, e.Node, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MalformedTreeError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("tree_index", e.TreeIndex).
		Str("node", e.Node).
		Str("reason", e.Reason).
		Str("type", "MalformedTreeError")
}

// NewMalformedTreeError は新しいMalformedTreeErrorを作成し、スタックトレースを付与します。
func NewMalformedTreeError(treeIndex int, node, reason string) error {
	err := &MalformedTreeError{TreeIndex: treeIndex, Node: node, Reason: reason}
	return errors.WithStack(err)
}

// FeatureIndexError は分岐特徴量のインデックスが派生列名の範囲外の場合のエラーです。
type FeatureIndexError struct {
	TreeIndex int
	NodeID    int
	Index     int
	Len       int
}

func (e *FeatureIndexError) Error() string {
	return fmt.Sprintf("lgbm2pmml: tree %d node %d: split feature index %d out of range for %d derived columns", e.TreeIndex, e.NodeID, e.Index, e.Len)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *FeatureIndexError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("tree_index", e.TreeIndex).
		Int("node_id", e.NodeID).
		Int("index", e.Index).
		Int("len", e.Len).
		Str("type", "FeatureIndexError")
}

// NewFeatureIndexError は新しいFeatureIndexErrorを作成し、スタックトレースを付与します。
func NewFeatureIndexError(treeIndex, nodeID, index, length int) error {
	err := &FeatureIndexError{TreeIndex: treeIndex, NodeID: nodeID, Index: index, Len: length}
	return errors.WithStack(err)
}

// UnsupportedSplitError は数値比較で表現できない分岐（カテゴリ分岐など）のエラーです。
type UnsupportedSplitError struct {
	TreeIndex    int
	NodeID       int
	DecisionType string
}

func (e *UnsupportedSplitError) Error() string {
	return fmt.Sprintf("lgbm2pmml: tree %d node %d: unsupported split decision type %q", e.TreeIndex, e.NodeID, e.DecisionType)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedSplitError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("tree_index", e.TreeIndex).
		Int("node_id", e.NodeID).
		Str("decision_type", e.DecisionType).
		Str("type", "UnsupportedSplitError")
}

// NewUnsupportedSplitError は新しいUnsupportedSplitErrorを作成し、スタックトレースを付与します。
func NewUnsupportedSplitError(treeIndex, nodeID int, decisionType string) error {
	err := &UnsupportedSplitError{TreeIndex: treeIndex, NodeID: nodeID, DecisionType: decisionType}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lgbm2pmml: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ModelError はモデルの読み込みや変換に関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lgbm2pmml: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("lgbm2pmml: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyModel は木を一本も含まないモデルが渡された場合のエラーです。
	ErrEmptyModel = New("model has no trees")

	// ErrNoFeatures は特徴量名が一つも与えられていない場合のエラーです。
	ErrNoFeatures = New("no feature names")
)
