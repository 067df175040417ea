package extract

import (
	"fmt"
	"regexp"
)

// DefaultValue 字段未匹配时使用的默认哨兵值
const DefaultValue = "-"

// FieldRule 单个字段的提取规则
// 模式统一以大小写不敏感、点号匹配换行的方式编译
// 直接构造或修改Pattern的规则在Extract时按Pattern重新编译
type FieldRule struct {
	Name    string // 字段名
	Pattern string // 原始正则表达式
	Group   int    // 捕获组序号
	Default string // 未匹配时的默认值

	re *regexp.Regexp // 由Pattern编译，re.String()与compileFlags+Pattern一致时可复用
}

const compileFlags = `(?is)`

// NewFieldRule 创建提取规则，模式无法编译时返回错误
func NewFieldRule(name, pattern string, group int, def string) (FieldRule, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return FieldRule{}, fmt.Errorf("field %s: %w", name, err)
	}
	return FieldRule{
		Name:    name,
		Pattern: pattern,
		Group:   group,
		Default: def,
		re:      re,
	}, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(compileFlags + pattern)
}

// compiled 返回与当前Pattern一致的正则
func (r FieldRule) compiled() (*regexp.Regexp, error) {
	if r.re != nil && r.re.String() == compileFlags+r.Pattern {
		return r.re, nil
	}
	return compilePattern(r.Pattern)
}

// newRule 创建捕获第1组、默认值为"-"的规则
func newRule(name, pattern string) FieldRule {
	return newRuleGroup(name, pattern, 1, DefaultValue)
}

// newRuleGroup 创建内置规则，模式错误时panic
func newRuleGroup(name, pattern string, group int, def string) FieldRule {
	r, err := NewFieldRule(name, pattern, group, def)
	if err != nil {
		panic("extract: " + err.Error())
	}
	return r
}

// Catalog 有序的字段规则表，初始化后只读
type Catalog struct {
	name  string
	rules []FieldRule
	index map[string]int
}

// newCatalog 构建规则表，字段名重复时直接panic
func newCatalog(name string, rules ...FieldRule) *Catalog {
	c := &Catalog{
		name:  name,
		rules: rules,
		index: make(map[string]int, len(rules)),
	}
	for i, r := range rules {
		if _, dup := c.index[r.Name]; dup {
			panic(fmt.Sprintf("extract: duplicate field %q in catalog %s", r.Name, name))
		}
		c.index[r.Name] = i
	}
	return c
}

// Name 返回规则表名称
func (c *Catalog) Name() string {
	return c.name
}

// Rules 按声明顺序返回规则副本
func (c *Catalog) Rules() []FieldRule {
	out := make([]FieldRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Rule 根据字段名查找规则
func (c *Catalog) Rule(name string) (FieldRule, bool) {
	i, ok := c.index[name]
	if !ok {
		return FieldRule{}, false
	}
	return c.rules[i], true
}

// Len 返回规则数量
func (c *Catalog) Len() int {
	return len(c.rules)
}

// 资产字段名
const (
	FieldAssetID      = "asset_id"
	FieldPlotID       = "plot_id"
	FieldSurveyNo     = "survey_no"
	FieldHouseID      = "house_id"
	FieldFloorNo      = "floor_no"
	FieldBuildingNo   = "building_no"
	FieldBuildingName = "building_name"
	FieldBuildupArea  = "buildup_area"
	FieldStreetName   = "street_name"
	FieldSectorWardNo = "sector_ward_no"
	FieldLocality     = "locality"
	FieldLandmark     = "landmark"
	FieldBlockNo      = "block_no"
	FieldVillage      = "village"
	FieldTown         = "town"
	FieldTaluka       = "taluka"
	FieldDistrict     = "district"
	FieldPinCode      = "pin_code"
	FieldState        = "state"
)

// 担保权益字段名，包括派生字段
const (
	FieldSecurityInterestID     = "security_interest_id"
	FieldSecurityInterestType   = "security_interest_type"
	FieldSICreationDate         = "si_creation_date"
	FieldChargeHolderName       = "charge_holder_name"
	FieldChargeAmount           = "charge_amount"
	FieldBorrowerType           = "borrower_type"
	FieldDetailsOfCharge        = "details_of_charge"
	FieldChargeHolderNameAmount = "charge_holder_name_amount"
	FieldChargeStatus           = "Is assetUnder Charge?/ Ranking of Charge"
	FieldChargeReleaseDate      = "charge_release_date"
	FieldBorrowers              = "borrowers"
	FieldSubBorrower            = "sub_borrower"
	FieldThirdPartyMortgagees   = "third_party_mortgagees"
)

// 旧版本输出中的键，组装时主动删除
var legacySecurityKeys = []string{
	"Asset Under Charge Ranking",
	"is_asset_under_charge_ranking",
}

// AssetFields 资产字段规则表
// 每条规则以文档中的标签开头，捕获到下一个相邻标签或行尾
var AssetFields = newCatalog("AssetFields",
	newRule(FieldAssetID, `Asset ID\s*([0-9]+)`),
	newRule(FieldPlotID, `Plot Number\s*([^\n\r]+?)(?:\s+Area|\n|$)`),
	newRule(FieldSurveyNo, `Survey Number\s*/\s*Municipal Number\s*([^\n\r]+?)(?:\s+Plot|\n|$)`),
	newRule(FieldHouseID, `House\s*/\s*Flat Number\s*/\s*Unit No\s*([^\n\r]+?)(?:\s+Floor|\n|$)`),
	newRule(FieldFloorNo, `Floor No\s*([^\n\r]+?)(?:\s+Building|\n|$)`),
	newRule(FieldBuildingNo, `Building\s*/\s*Tower Name\s*/\s*Number\s*([^\n\r]+?)(?:\s+Name|\n|$)`),
	newRule(FieldBuildingName, `Name of the Project\s*/\s*Scheme\s*/\s*Society\s*/\s*Zone\s*([^\n\r]+?)(?:\s+Street|\n|$)`),
	newRule(FieldBuildupArea, `Area\s*([0-9.]+)`),
	newRule(FieldStreetName, `Street Name\s*/\s*Number\s*([^\n\r]+?)(?:\s+Pocket|\n|$)`),
	newRule(FieldSectorWardNo, `Locality\s*/\s*Sector\s*([^\n\r]+?)(?:\s+City|\n|$)`),
	newRule(FieldLocality, `Locality\s*/\s*Sector\s*([^\n\r]+?)(?:\s+City|\n|$)`),
	newRule(FieldLandmark, `Landmark\s*([^\n\r]+?)(?:\s+Block|\n|$)`),
	newRule(FieldBlockNo, `Block Number\s*([^\n\r]+?)(?:\s+Village|\n|$)`),
	newRule(FieldVillage, `City\s*/\s*Town\s*/\s*Village\s*([^\n\r]+?)(?:\s+District|\n|$)`),
	newRule(FieldTown, `City\s*/\s*Town\s*/\s*Village\s*([^\n\r]+?)(?:\s+District|\n|$)`),
	newRule(FieldTaluka, `Taluka\s*([^\n\r]+?)(?:\s+District|\n|$)`),
	newRule(FieldDistrict, `District\s*([^\n\r]+?)(?:\s+State|\n|$)`),
	newRule(FieldPinCode, `Pin Code\s*/\s*Post Code\s*([0-9]+)`),
	newRule(FieldState, `State\s*/\s*UT\s*([^\n\r]+)`),
)

// SecurityFields 担保权益字段规则表
var SecurityFields = newCatalog("SecurityFields",
	newRule(FieldSecurityInterestID, `Security Interest ID\s*([0-9]+)`),
	newRule(FieldSecurityInterestType, `Type Of Security Interest\s*([^\n\r]+?)(?:\s+Type Of Finance|\s+Details Of Charge|\n|$)`),
	newRule(FieldSICreationDate, `SI Creation Date In Bank\s*([0-9\-]+)`),
	newRule(FieldChargeHolderName, `Charge Holder Name\s+Office / Ward / Branch Name\s*(.*?)\s*(?:Original View|Transaction History)`),
	newRule(FieldChargeAmount, `Total Secured Amount\s*([0-9.]+)`),
	newRule(FieldBorrowerType, `Borrower Type\s*([^\n\r]+?)(?:\s+Asset Category|\s+Name of the Debtor|\n|$)`),
	newRule(FieldDetailsOfCharge, `Details Of Charge\s*([^\n\r]+)`),
)

// 派生计算和公司信息使用的辅助规则
var (
	areaUnitRule        = newRule("area_unit", `Area Unit\s*(\w+\s*\w+)`)
	searchReferenceRule = newRule("search_reference_id", `Transaction ID / QRF NO\s*([0-9]+)`)
)
