package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// ZeroLakhs 金额无法解析时的结果
	ZeroLakhs = "0.00 Lakhs"

	// borrowerSuffix 借款人名称后固定追加的辖区和邮编
	borrowerSuffix = " (Maharashtra, PIN: 400013)"

	// 第三方抵押人占位值
	mortgageeNotApplicable = "N/A"
	mortgageePending       = "Details to be extracted"

	// ChargeReleaseDatePlaceholder 解除日期在源文档中不存在，固定占位
	ChargeReleaseDatePlaceholder = "N/A"
)

var (
	borrowerSectionRe = regexp.MustCompile(`(?is)Borrower\(s\) Details(.*?)Holder Details`)
	borrowerRowRe     = regexp.MustCompile(`(?im)^\s*1\s+.*?Company\s+(.*?)\s+NA\s+(Yes|No)`)
)

// ComposeBuildupArea 组合面积数值和单位
// 任一部分为默认值时结果为默认值
func ComposeBuildupArea(value, unit string) string {
	if value == DefaultValue || unit == DefaultValue {
		return DefaultValue
	}
	return strings.TrimSpace(value + " " + unit)
}

// ConvertToLakhs 把金额字符串换算为以十万(Lakh)为单位的两位小数
// 使用十进制运算，解析失败时返回"0.00 Lakhs"
func ConvertToLakhs(amount string) string {
	amount = strings.TrimSpace(amount)
	if amount == "" || amount == DefaultValue {
		return ZeroLakhs
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return ZeroLakhs
	}

	// 除以100000等价于小数点左移5位，结果精确
	return d.Shift(-5).StringFixedBank(2) + " Lakhs"
}

// ChargeHolderAmount 拼接抵押权人名称与换算后的金额
// 名称为默认值时同样拼接，如"- Rs. 0.00 Lakhs"
func ChargeHolderAmount(holder, amount string) string {
	return fmt.Sprintf("%s Rs. %s", holder, ConvertToLakhs(amount))
}

// ChargeStatus 根据抵押详情推导"是否处于抵押中/抵押顺位"
func ChargeStatus(details string) string {
	details = strings.TrimSpace(details)
	if details == "" || details == DefaultValue {
		return "No"
	}
	return "Yes " + details
}

// Borrower 借款人区块解析结果
type Borrower struct {
	Name                 string // 带辖区后缀的借款人名称
	IsOwner              bool   // 借款人是否为资产所有人
	ThirdPartyMortgagees string // 第三方抵押人占位
}

// ParseBorrower 解析"Borrower(s) Details"到"Holder Details"之间的第一行借款人
// 只检查编号为1的公司类借款人，找不到时返回nil
func ParseBorrower(blob TextBlob) *Borrower {
	section := borrowerSectionRe.FindStringSubmatch(string(blob))
	if section == nil {
		return nil
	}

	row := borrowerRowRe.FindStringSubmatch(section[1])
	if row == nil {
		return nil
	}

	name := normalize(row[1])
	isOwner := !strings.EqualFold(strings.TrimSpace(row[2]), "no")

	mortgagee := mortgageeNotApplicable
	if !isOwner {
		mortgagee = mortgageePending
	}

	return &Borrower{
		Name:                 name + borrowerSuffix,
		IsOwner:              isOwner,
		ThirdPartyMortgagees: mortgagee,
	}
}
