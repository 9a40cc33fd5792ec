package parser

import (
	"strings"
	"testing"
)

const exportXML = `<?xml version="1.0" encoding="UTF-8"?>
<POWERMART>
  <REPOSITORY NAME="REP_DWH" VERSION="188.98">
    <FOLDER NAME="SALES">
      <SOURCE NAME="ORDERS" DATABASETYPE="Oracle">
        <SOURCEFIELD NAME="ORDER_ID" DATATYPE="number" PRECISION="10" SCALE="0"/>
        <SOURCEFIELD NAME="ORDER_DATE" DATATYPE="date/time"/>
        <SOURCEFIELD NAME="STATUS" DATATYPE="varchar2" PRECISION="1"/>
      </SOURCE>
      <TARGET NAME="FACT_SALES" DATABASETYPE="Microsoft SQL Server">
        <TARGETFIELD NAME="ORDER_ID" DATATYPE="int"/>
      </TARGET>
      <MAPPING NAME="m_LOAD_SALES" DESCRIPTION="Loads the sales fact">
        <TRANSFORMATION NAME="SQ_ORDERS" TYPE="Source Qualifier"/>
        <TRANSFORMATION NAME="FIL_ACTIVE" TYPE="Filter">
          <TABLEATTRIBUTE NAME="Filter Condition" VALUE="STATUS = 'A'"/>
        </TRANSFORMATION>
        <TRANSFORMATION NAME="AGG_SALES" TYPE="Aggregator">
          <TRANSFORMFIELD NAME="REGION" EXPRESSIONTYPE="GROUPBY" PORTTYPE="INPUT/OUTPUT"/>
          <TRANSFORMFIELD NAME="TOTAL" EXPRESSION="SUM(AMOUNT)" EXPRESSIONTYPE="GENERAL" PORTTYPE="OUTPUT"/>
          <TABLEATTRIBUTE NAME="Sorted Input" VALUE="YES"/>
        </TRANSFORMATION>
        <TRANSFORMATION NAME="JNR_ORD_CUST" TYPE="Joiner">
          <TRANSFORMFIELD NAME="CUSTOMER_ID" PORTTYPE="INPUT/OUTPUT/MASTER"/>
          <TRANSFORMFIELD NAME="CUSTOMER_ID1" PORTTYPE="INPUT/OUTPUT"/>
          <TABLEATTRIBUTE NAME="Join Condition" VALUE="CUSTOMER_ID = CUSTOMER_ID1"/>
          <TABLEATTRIBUTE NAME="Join Type" VALUE="Master Outer Join"/>
        </TRANSFORMATION>
        <TRANSFORMATION NAME="SRT_ORDERS" TYPE="Sorter">
          <TRANSFORMFIELD NAME="ORDER_DATE" ISSORTKEY="YES" SORTDIRECTION="DESCENDING" SORTORDER="0"/>
          <TRANSFORMFIELD NAME="AMOUNT" PORTTYPE="INPUT/OUTPUT"/>
          <TABLEATTRIBUTE NAME="Distinct" VALUE="YES"/>
        </TRANSFORMATION>
        <TRANSFORMATION NAME="RTR_VALUE" TYPE="Router">
          <GROUP NAME="INPUT" TYPE="INPUT"/>
          <GROUP NAME="HIGH_VALUE" TYPE="OUTPUT" EXPRESSION="AMOUNT &gt; 1000"/>
          <GROUP NAME="DEFAULT1" TYPE="OUTPUT/DEFAULT"/>
        </TRANSFORMATION>
        <TRANSFORMATION NAME="LKP_DIM_PROMO" TYPE="Lookup Procedure">
          <TRANSFORMFIELD NAME="PROMO_ID" PORTTYPE="INPUT/OUTPUT"/>
          <TRANSFORMFIELD NAME="PROMO_NAME" PORTTYPE="LOOKUP/OUTPUT"/>
          <TABLEATTRIBUTE NAME="Lookup table name" VALUE="DIM_PROMO"/>
          <TABLEATTRIBUTE NAME="Source Type" VALUE="Database"/>
          <TABLEATTRIBUTE NAME="Lookup condition" VALUE="PROMO_ID = PROMO_ID"/>
          <TABLEATTRIBUTE NAME="Lookup caching enabled" VALUE="YES"/>
        </TRANSFORMATION>
        <TRANSFORMATION NAME="UPD_STRATEGY" TYPE="Update Strategy">
          <TABLEATTRIBUTE NAME="Update Strategy Expression" VALUE="DD_UPDATE"/>
        </TRANSFORMATION>
        <CONNECTOR FROMINSTANCE="ORDERS" TOINSTANCE="SQ_ORDERS">
          <FIELDMAP FROMFIELD="ORDER_ID" TOFIELD="ORDER_ID"/>
          <FIELDMAP FROMFIELD="STATUS" TOFIELD="STATUS"/>
        </CONNECTOR>
        <CONNECTOR FROMINSTANCE="SQ_ORDERS" TOINSTANCE="FIL_ACTIVE" FROMFIELD="STATUS" TOFIELD="STATUS"/>
      </MAPPING>
    </FOLDER>
  </REPOSITORY>
</POWERMART>`

func TestParseMappingStructure(t *testing.T) {
	meta, err := Parse(strings.NewReader(exportXML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if meta.Name != "m_LOAD_SALES" {
		t.Errorf("mapping name = %q", meta.Name)
	}
	if meta.Description != "Loads the sales fact" {
		t.Errorf("description = %q", meta.Description)
	}
	if meta.Version != "188.98" {
		t.Errorf("version = %q", meta.Version)
	}

	if len(meta.Sources) != 1 {
		t.Fatalf("sources = %d", len(meta.Sources))
	}
	src := meta.Sources[0]
	if src.Name != "ORDERS" || src.DatabaseType != "Oracle" {
		t.Errorf("source = %+v", src)
	}
	if len(src.Fields) != 3 || src.Fields[0].Precision != 10 {
		t.Errorf("source fields = %+v", src.Fields)
	}

	if len(meta.Targets) != 1 || meta.Targets[0].Name != "FACT_SALES" {
		t.Errorf("targets = %+v", meta.Targets)
	}
	if len(meta.Transformations) != 8 {
		t.Errorf("transformations = %d", len(meta.Transformations))
	}
	if len(meta.Connectors) != 2 {
		t.Errorf("connectors = %d", len(meta.Connectors))
	}
	if got := meta.Connectors[0].FromFields; len(got) != 2 || got[0] != "ORDER_ID" {
		t.Errorf("connector field maps = %v", got)
	}
	if got := meta.Connectors[1].FromFields; len(got) != 1 || got[0] != "STATUS" {
		t.Errorf("inline connector fields = %v", got)
	}
}

func TestParseTransformationProperties(t *testing.T) {
	meta, err := Parse(strings.NewReader(exportXML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	byName := make(map[string]int)
	for i, tr := range meta.Transformations {
		byName[tr.Name] = i
	}

	fil := meta.Transformations[byName["FIL_ACTIVE"]]
	if fil.Filter == nil || fil.Filter.Condition != "STATUS = 'A'" {
		t.Errorf("filter = %+v", fil.Filter)
	}

	agg := meta.Transformations[byName["AGG_SALES"]]
	if agg.Aggregator == nil {
		t.Fatal("aggregator properties missing")
	}
	if len(agg.Aggregator.GroupByFields) != 1 || agg.Aggregator.GroupByFields[0] != "REGION" {
		t.Errorf("group by = %v", agg.Aggregator.GroupByFields)
	}
	if len(agg.Aggregator.AggregateExpressions) != 1 || agg.Aggregator.AggregateExpressions[0].Expression != "SUM(AMOUNT)" {
		t.Errorf("aggregates = %+v", agg.Aggregator.AggregateExpressions)
	}
	if !agg.Aggregator.SortedInput {
		t.Error("sorted input not parsed")
	}

	jnr := meta.Transformations[byName["JNR_ORD_CUST"]]
	if jnr.Joiner == nil || jnr.Joiner.JoinType != "Master Outer Join" {
		t.Errorf("joiner = %+v", jnr.Joiner)
	}
	if len(jnr.Joiner.MasterFields) != 1 || jnr.Joiner.MasterFields[0] != "CUSTOMER_ID" {
		t.Errorf("master fields = %v", jnr.Joiner.MasterFields)
	}

	srt := meta.Transformations[byName["SRT_ORDERS"]]
	if srt.Sorter == nil || !srt.Sorter.Distinct {
		t.Errorf("sorter = %+v", srt.Sorter)
	}
	if len(srt.Sorter.SortKeys) != 1 || srt.Sorter.SortKeys[0].Direction != "DESCENDING" {
		t.Errorf("sort keys = %+v", srt.Sorter.SortKeys)
	}

	rtr := meta.Transformations[byName["RTR_VALUE"]]
	if rtr.Router == nil || len(rtr.Router.Groups) != 1 || rtr.Router.Groups[0].Name != "HIGH_VALUE" {
		t.Errorf("router = %+v", rtr.Router)
	}
	if rtr.Router.DefaultGroup != "DEFAULT1" {
		t.Errorf("default group = %q", rtr.Router.DefaultGroup)
	}

	lkp := meta.Transformations[byName["LKP_DIM_PROMO"]]
	if lkp.Lookup == nil || lkp.Lookup.TableName != "DIM_PROMO" || !lkp.Lookup.CacheEnabled {
		t.Errorf("lookup = %+v", lkp.Lookup)
	}
	if len(lkp.Lookup.ReturnFields) != 1 || lkp.Lookup.ReturnFields[0].Name != "PROMO_NAME" {
		t.Errorf("return fields = %+v", lkp.Lookup.ReturnFields)
	}

	upd := meta.Transformations[byName["UPD_STRATEGY"]]
	if upd.UpdateStrategy == nil || upd.UpdateStrategy.Expression != "DD_UPDATE" {
		t.Errorf("update strategy = %+v", upd.UpdateStrategy)
	}
}

func TestParseInvalidXML(t *testing.T) {
	if _, err := Parse(strings.NewReader("<POWERMART><REPOSITORY>")); err == nil {
		t.Error("expected parse error")
	}
}
