package extract

// 未提供公司信息时使用的固定值
const (
	fallbackCompanyName      = "APRN ENTERPRISES PRIVATE LIMITED"
	fallbackCIN              = "U21000MH1994PTC084095"
	fallbackIncorporatedOn   = "28.12.1994"
	fallbackRegisteredOffice = "SUN PARADISE BUSINESS PLAZA, 7 TH FLOOR CITY SURVEY NO 1 A/456 SENAPATI BAPAT MA, RG, Mumbai City, LOWER PAREL MUMBAI, Maharashtra, India, 400013."
)

// HeaderInfo 公司级元数据
type HeaderInfo struct {
	NameOfCompany       string `json:"name_of_company"`
	CINNumber           string `json:"cin_number"`
	SearchReferenceID   string `json:"search_reference_id"`
	DateOfIncorporation string `json:"date_of_incorporation"`
	UDIN                string `json:"udin"`
	RegisteredOffice    string `json:"registered_office"`
}

// HeaderOverride 操作员提交的公司信息
// 字段为nil表示未提供
type HeaderOverride struct {
	CompanyName         *string `json:"companyName,omitempty"`
	CINNumber           *string `json:"cinNumber,omitempty"`
	SearchReferenceID   *string `json:"searchReferenceId,omitempty"`
	DateOfIncorporation *string `json:"dateOfIncorporation,omitempty"`
	UDIN                *string `json:"udin,omitempty"`
	RegisteredOffice    *string `json:"registeredOffice,omitempty"`
}

// Empty 判断是否一个字段都没有提供
func (o *HeaderOverride) Empty() bool {
	return o == nil || (o.CompanyName == nil && o.CINNumber == nil && o.SearchReferenceID == nil &&
		o.DateOfIncorporation == nil && o.UDIN == nil && o.RegisteredOffice == nil)
}

// ResolveHeader 解析公司信息
// 有覆盖值时逐字段取覆盖值，只有搜索参考号缺失时回退到文本提取；
// 没有覆盖值或覆盖值为空时使用文本提取结果和固定值
func ResolveHeader(blob TextBlob, override *HeaderOverride) HeaderInfo {
	if override.Empty() {
		return HeaderInfo{
			NameOfCompany:       fallbackCompanyName,
			CINNumber:           fallbackCIN,
			SearchReferenceID:   Extract(blob, searchReferenceRule),
			DateOfIncorporation: fallbackIncorporatedOn,
			UDIN:                DefaultValue,
			RegisteredOffice:    fallbackRegisteredOffice,
		}
	}

	ref := stringOr(override.SearchReferenceID, "")
	if override.SearchReferenceID == nil {
		ref = Extract(blob, searchReferenceRule)
	}

	return HeaderInfo{
		NameOfCompany:       stringOr(override.CompanyName, DefaultValue),
		CINNumber:           stringOr(override.CINNumber, DefaultValue),
		SearchReferenceID:   ref,
		DateOfIncorporation: stringOr(override.DateOfIncorporation, DefaultValue),
		UDIN:                stringOr(override.UDIN, DefaultValue),
		RegisteredOffice:    stringOr(override.RegisteredOffice, DefaultValue),
	}
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
