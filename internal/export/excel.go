package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fyerfyer/cersai-digest/internal/extract"
)

const (
	companySheet = "Company Details"
	assetSheet   = "Asset Details"
)

// 公司信息表头，与JSON键一致
var companyColumns = []string{
	"name_of_company",
	"cin_number",
	"search_reference_id",
	"date_of_incorporation",
	"udin",
	"registered_office",
}

type assetColumn struct {
	Header   string
	Security bool // 为true时从担保权益中取值
	Key      string
}

// 资产表的展平列
var assetColumns = []assetColumn{
	{"Asset_ID", false, extract.FieldAssetID},
	{"Plot_ID", false, extract.FieldPlotID},
	{"Survey_Number", false, extract.FieldSurveyNo},
	{"House_ID", false, extract.FieldHouseID},
	{"Floor_Number", false, extract.FieldFloorNo},
	{"Building_Number", false, extract.FieldBuildingNo},
	{"Building_Name", false, extract.FieldBuildingName},
	{"Buildup_Area", false, extract.FieldBuildupArea},
	{"Street_Name", false, extract.FieldStreetName},
	{"Locality", false, extract.FieldLocality},
	{"Landmark", false, extract.FieldLandmark},
	{"Block_Number", false, extract.FieldBlockNo},
	{"Village_Town", false, extract.FieldVillage},
	{"Taluka", false, extract.FieldTaluka},
	{"District", false, extract.FieldDistrict},
	{"Pin_Code", false, extract.FieldPinCode},
	{"State", false, extract.FieldState},
	{"Security_Interest_ID", true, extract.FieldSecurityInterestID},
	{"Security_Interest_Type", true, extract.FieldSecurityInterestType},
	{"SI_Creation_Date", true, extract.FieldSICreationDate},
	{"Charge_Holder_Amount", true, extract.FieldChargeHolderNameAmount},
	{"Is assetUnder Charge?/ Ranking of Charge", true, extract.FieldChargeStatus},
	{"Charge_Release_Date", true, extract.FieldChargeReleaseDate},
	{"Borrower_Type", true, extract.FieldBorrowerType},
	{"Borrowers", true, extract.FieldBorrowers},
	{"Sub_Borrower", true, extract.FieldSubBorrower},
	{"Third_Party_Mortgagees", true, extract.FieldThirdPartyMortgagees},
}

// RenderExcel 把批处理结果渲染为两个工作表的xlsx工作簿
// 失败的条目只保留序号，其余列为空
func RenderExcel(result *extract.BatchResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", companySheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	c := result.Company
	companyValues := []string{c.NameOfCompany, c.CINNumber, c.SearchReferenceID, c.DateOfIncorporation, c.UDIN, c.RegisteredOffice}
	for i, h := range companyColumns {
		if err := setCell(f, companySheet, i+1, 1, h); err != nil {
			return nil, err
		}
		if err := setCell(f, companySheet, i+1, 2, companyValues[i]); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(assetSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if err := setCell(f, assetSheet, 1, 1, "Asset_Index"); err != nil {
		return nil, err
	}
	for i, col := range assetColumns {
		if err := setCell(f, assetSheet, i+2, 1, col.Header); err != nil {
			return nil, err
		}
	}

	for i, entry := range result.Assets {
		r := i + 2
		if err := setCell(f, assetSheet, 1, r, i+1); err != nil {
			return nil, err
		}
		if entry.Failed() || entry.Record == nil {
			continue
		}
		for j, col := range assetColumns {
			value := entry.Record.Asset[col.Key]
			if col.Security {
				value = entry.Record.Security[col.Key]
			}
			if err := setCell(f, assetSheet, j+2, r, value); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(companySheet, "A", "F", 28)
	_ = f.SetColWidth(assetSheet, "B", "AB", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("xlsx cell: %w", err)
	}
	return f.SetCellValue(sheet, cell, v)
}
