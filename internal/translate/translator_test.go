package translate

import (
	"testing"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

func TestTranslateNodeExpression(t *testing.T) {
	raw := &domain.Transformation{
		Name: "EXP_CALC",
		Type: "Expression",
		Fields: []domain.Field{
			{Name: "ORDER_ID", Expression: "ORDER_ID"},
			{Name: "TOTAL", Expression: "IIF(QTY > 0, QTY * PRICE, 0)"},
			{Name: "PLAIN_PORT"},
		},
	}

	var diags domain.Diagnostics
	node := TranslateNode(raw, &diags)

	if node == nil || node.Type != domain.NodeDerivedColumn {
		t.Fatalf("node = %+v", node)
	}
	cols := node.DerivedColumn.Columns
	if len(cols) != 2 {
		t.Fatalf("columns = %+v", cols)
	}
	if cols[1].Expression != "iif(QTY > 0, QTY * PRICE, 0)" {
		t.Errorf("translated expression = %q", cols[1].Expression)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestTranslateNodeExpressionUntranslatableColumnDropped(t *testing.T) {
	raw := &domain.Transformation{
		Name: "EXP_BAD",
		Type: "Expression",
		Fields: []domain.Field{
			{Name: "GOOD", Expression: "UPPER(NAME)"},
			{Name: "BAD", Expression: "DECODE(STATUS, 'A')"},
		},
	}

	var diags domain.Diagnostics
	node := TranslateNode(raw, &diags)

	if len(node.DerivedColumn.Columns) != 1 || node.DerivedColumn.Columns[0].Name != "GOOD" {
		t.Errorf("columns = %+v", node.DerivedColumn.Columns)
	}
	if len(diags.Errors()) != 1 {
		t.Errorf("expected one error diagnostic, got %v", diags)
	}
}

func TestTranslateNodeFilter(t *testing.T) {
	raw := &domain.Transformation{
		Name:   "FIL_ACTIVE",
		Type:   "Filter",
		Filter: &domain.FilterProperties{Condition: "STATUS = 'A' AND AMOUNT > 0"},
	}

	var diags domain.Diagnostics
	node := TranslateNode(raw, &diags)

	if node.Filter.Condition != "STATUS == 'A' && AMOUNT > 0" {
		t.Errorf("condition = %q", node.Filter.Condition)
	}
}

func TestTranslateNodeJoiner(t *testing.T) {
	raw := &domain.Transformation{
		Name: "JNR_ORD_CUST",
		Type: "Joiner",
		Joiner: &domain.JoinerProperties{
			JoinType:      "Master Outer Join",
			JoinCondition: "CUSTOMER_ID = CUSTOMER_ID1 AND REGION = REGION1",
		},
	}

	var diags domain.Diagnostics
	node := TranslateNode(raw, &diags)

	if node.Join.JoinType != "left" {
		t.Errorf("join type = %q", node.Join.JoinType)
	}
	want := []domain.JoinCondition{
		{LeftColumn: "CUSTOMER_ID", RightColumn: "CUSTOMER_ID1"},
		{LeftColumn: "REGION", RightColumn: "REGION1"},
	}
	if len(node.Join.Conditions) != 2 || node.Join.Conditions[0] != want[0] || node.Join.Conditions[1] != want[1] {
		t.Errorf("conditions = %+v", node.Join.Conditions)
	}
}

func TestTranslateNodeJoinerUnknownTypeDefaultsInner(t *testing.T) {
	raw := &domain.Transformation{
		Name:   "JNR_X",
		Type:   "Joiner",
		Joiner: &domain.JoinerProperties{JoinType: "Cross"},
	}

	var diags domain.Diagnostics
	node := TranslateNode(raw, &diags)

	if node.Join.JoinType != "inner" {
		t.Errorf("join type = %q", node.Join.JoinType)
	}
	if len(diags.Warnings()) != 1 {
		t.Errorf("expected unknown join type warning, got %v", diags)
	}
}

func TestTranslateNodeSorter(t *testing.T) {
	raw := &domain.Transformation{
		Name: "SRT_ORDERS",
		Type: "Sorter",
		Sorter: &domain.SorterProperties{
			SortKeys: []domain.SortKey{
				{Name: "ORDER_DATE", Direction: "DESCENDING"},
				{Name: "ORDER_ID", Direction: "ASCENDING"},
			},
		},
	}

	node := TranslateNode(raw, &domain.Diagnostics{})

	if node.Sort.OrderBy[0].Order != "desc" || node.Sort.OrderBy[1].Order != "asc" {
		t.Errorf("order by = %+v", node.Sort.OrderBy)
	}
}

func TestTranslateNodeRouter(t *testing.T) {
	raw := &domain.Transformation{
		Name: "RTR_STATUS",
		Type: "Router",
		Router: &domain.RouterProperties{
			Groups: []domain.RouterGroup{
				{Name: "ACTIVE", Type: "OUTPUT", Expression: "STATUS = 'A'"},
				{Name: "INACTIVE", Type: "OUTPUT", Expression: "STATUS = 'I'"},
				{Name: "REST", Type: "DEFAULT"},
			},
		},
	}

	var diags domain.Diagnostics
	node := TranslateNode(raw, &diags)

	cfg := node.ConditionalSplit
	if len(cfg.Conditions) != 2 {
		t.Fatalf("conditions = %+v", cfg.Conditions)
	}
	if cfg.Conditions[0].Expression != "STATUS == 'A'" {
		t.Errorf("first condition = %q", cfg.Conditions[0].Expression)
	}
	if cfg.DefaultStream != "REST" {
		t.Errorf("default stream = %q", cfg.DefaultStream)
	}
}

func TestTranslateNodeLookup(t *testing.T) {
	raw := &domain.Transformation{
		Name: "LKP_DIM_PROMO",
		Type: "Lookup Procedure",
		Fields: []domain.Field{
			{Name: "PROMO_ID"},
			{Name: "PROMO_ID2"},
			{Name: "PROMO_NAME"},
		},
		Lookup: &domain.LookupProperties{
			TableName:  "lkp_DIM_PROMO",
			SourceType: "Flat File",
			Condition:  "PROMO_ID2 = PROMO_ID",
			ReturnFields: []domain.Field{
				{Name: "PROMO_ID2"},
				{Name: "PROMO_NAME"},
			},
		},
	}

	var diags domain.Diagnostics
	node := TranslateNode(raw, &diags)

	cfg := node.Lookup
	if cfg.Dataset != "lkp_DIM_PROMO" || cfg.SourceType != "Flat File" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Conditions) != 1 || cfg.Conditions[0].LeftColumn != "PROMO_ID2" {
		t.Errorf("conditions = %+v", cfg.Conditions)
	}
	if len(cfg.ReturnFields) != 2 || len(cfg.Outputs) != 3 {
		t.Errorf("return fields = %v, outputs = %v", cfg.ReturnFields, cfg.Outputs)
	}
}

func TestTranslateNodeUpdateStrategy(t *testing.T) {
	cases := []struct {
		expr      string
		action    domain.AlterRowAction
		condition string
		wantDiags bool
	}{
		{"DD_INSERT", domain.AlterRowInsert, "", false},
		{"1", domain.AlterRowUpdate, "", false},
		{"IIF(CHANGE_FLAG = 'U', DD_UPDATE, DD_INSERT)", domain.AlterRowUpdate, "CHANGE_FLAG == 'U'", true},
		{"SOMETHING_ELSE(X)", domain.AlterRowInsert, "", true},
	}

	for _, tc := range cases {
		raw := &domain.Transformation{
			Name:           "UPD_STRATEGY",
			Type:           "Update Strategy",
			UpdateStrategy: &domain.UpdateStrategyProperties{Expression: tc.expr},
		}

		var diags domain.Diagnostics
		node := TranslateNode(raw, &diags)

		if node.AlterRow.Action != tc.action {
			t.Errorf("%q: action = %q, want %q", tc.expr, node.AlterRow.Action, tc.action)
		}
		if node.AlterRow.Condition != tc.condition {
			t.Errorf("%q: condition = %q, want %q", tc.expr, node.AlterRow.Condition, tc.condition)
		}
		if tc.wantDiags && len(diags) == 0 {
			t.Errorf("%q: expected diagnostics", tc.expr)
		}
	}
}

func TestTranslateNodeSourceQualifierSkipped(t *testing.T) {
	raw := &domain.Transformation{Name: "SQ_ORDERS", Type: "Source Qualifier"}

	var diags domain.Diagnostics
	if node := TranslateNode(raw, &diags); node != nil {
		t.Errorf("source qualifier must dissolve, got %+v", node)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestTranslateNodeUnknownKind(t *testing.T) {
	raw := &domain.Transformation{Name: "NRM_X", Type: "Normalizer"}

	var diags domain.Diagnostics
	if node := TranslateNode(raw, &diags); node != nil {
		t.Errorf("unknown kind must be skipped, got %+v", node)
	}
	if len(diags.Warnings()) != 1 {
		t.Errorf("expected unsupported construct warning, got %v", diags)
	}
}
