package extract

// sampleReport 一份展平后的CERSAI检索报告文本
const sampleReport = `CERSAI Search Report
Transaction ID / QRF NO 202400123456
Security Interest ID 400012345678
Type Of Security Interest Mortgage by deposit of title deeds Type Of Finance Term Loan
SI Creation Date In Bank 15-03-2019
Details Of Charge First charge
Charge Holder Name Office / Ward / Branch Name
STATE BANK OF INDIA Corporate Finance Branch
Original View
Total Secured Amount 374400000.00
Borrower Type Company Asset Category Immovable
Asset ID 200045678901
Survey Number / Municipal Number 456/1 Plot Number 12A Area 1500.00
Area Unit Square Feet
House / Flat Number / Unit No 701 Floor No 7 Building / Tower Name / Number Tower B Name of the Project / Scheme / Society / Zone Sun Paradise Business Plaza Street Name / Number Senapati Bapat Marg Pocket A
Locality / Sector Lower Parel City / Town / Village Mumbai District Mumbai City
Landmark Near Phoenix Mills Block Number B2
Taluka Mumbai
State / UT Maharashtra
Pin Code / Post Code 400013
Borrower(s) Details
Sr No Borrower Name Type Is Owner
1 Company APRN ENTERPRISES PRIVATE LIMITED NA No
Holder Details
`

// expectedAsset sampleReport的资产字段期望值
var expectedAsset = Fields{
	FieldAssetID:      "200045678901",
	FieldPlotID:       "12A",
	FieldSurveyNo:     "456/1",
	FieldHouseID:      "701",
	FieldFloorNo:      "7",
	FieldBuildingNo:   "Tower B",
	FieldBuildingName: "Sun Paradise Business Plaza",
	FieldBuildupArea:  "1500.00 Square Feet",
	FieldStreetName:   "Senapati Bapat Marg",
	FieldSectorWardNo: "Lower Parel",
	FieldLocality:     "Lower Parel",
	FieldLandmark:     "Near Phoenix Mills",
	FieldBlockNo:      "B2",
	FieldVillage:      "Mumbai",
	FieldTown:         "Mumbai",
	FieldTaluka:       "Mumbai",
	FieldDistrict:     "Mumbai City",
	FieldPinCode:      "400013",
	FieldState:        "Maharashtra",
}

func strPtr(s string) *string {
	return &s
}
