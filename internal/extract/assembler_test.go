package extract

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAssemble 测试完整文档的组装结果
func TestAssemble(t *testing.T) {
	record, header := Assemble(sampleReport, nil)

	for name, want := range expectedAsset {
		assert.Equal(t, want, record.Asset[name], "asset field %s", name)
	}
	assert.Len(t, record.Asset, len(expectedAsset))

	sec := record.Security
	assert.Equal(t, "STATE BANK OF INDIA Corporate Finance Branch Rs. 3744.00 Lakhs", sec[FieldChargeHolderNameAmount])
	assert.Equal(t, "Yes First charge", sec[FieldChargeStatus])
	assert.Equal(t, "N/A", sec[FieldChargeReleaseDate])
	assert.Equal(t, "APRN ENTERPRISES PRIVATE LIMITED (Maharashtra, PIN: 400013)", sec[FieldBorrowers])
	assert.Equal(t, DefaultValue, sec[FieldSubBorrower])
	assert.Equal(t, "Details to be extracted", sec[FieldThirdPartyMortgagees])

	// 派生字段不会删除原始捕获
	assert.Equal(t, "STATE BANK OF INDIA Corporate Finance Branch", sec[FieldChargeHolderName])
	assert.Equal(t, "374400000.00", sec[FieldChargeAmount])
	assert.Equal(t, "First charge", sec[FieldDetailsOfCharge])

	for _, key := range legacySecurityKeys {
		assert.NotContains(t, sec, key)
	}

	assert.Equal(t, "202400123456", header.SearchReferenceID)
	assert.Equal(t, fallbackCompanyName, header.NameOfCompany)
	assert.Equal(t, fallbackCIN, header.CINNumber)
	assert.Equal(t, fallbackIncorporatedOn, header.DateOfIncorporation)
	assert.Equal(t, DefaultValue, header.UDIN)
	assert.Equal(t, fallbackRegisteredOffice, header.RegisteredOffice)
}

// TestAssemble_EmptyText 空文本下所有字段都有默认值
func TestAssemble_EmptyText(t *testing.T) {
	record, header := Assemble("", nil)

	for _, rule := range AssetFields.Rules() {
		assert.Equal(t, DefaultValue, record.Asset[rule.Name], "asset field %s", rule.Name)
	}
	assert.Equal(t, "- Rs. 0.00 Lakhs", record.Security[FieldChargeHolderNameAmount])
	assert.Equal(t, "No", record.Security[FieldChargeStatus])
	assert.Equal(t, DefaultValue, record.Security[FieldBorrowers])
	assert.Equal(t, DefaultValue, record.Security[FieldThirdPartyMortgagees])
	assert.Equal(t, DefaultValue, header.SearchReferenceID)

	for k, v := range record.Security {
		assert.NotEmpty(t, v, "security field %s", k)
	}
}

// TestAssemble_Idempotent 相同输入产生字节一致的输出
func TestAssemble_Idempotent(t *testing.T) {
	first, _ := Assemble(sampleReport, nil)
	second, _ := Assemble(sampleReport, nil)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

// TestResolveHeader_Override 测试公司信息覆盖优先级
func TestResolveHeader_Override(t *testing.T) {
	full := &HeaderOverride{
		CompanyName:         strPtr("ACME LIMITED"),
		CINNumber:           strPtr("L12345MH2000PLC000001"),
		SearchReferenceID:   strPtr("999"),
		DateOfIncorporation: strPtr("01.01.2000"),
		UDIN:                strPtr("UDIN-1"),
		RegisteredOffice:    strPtr("Nariman Point, Mumbai"),
	}

	header := ResolveHeader(sampleReport, full)
	assert.Equal(t, HeaderInfo{
		NameOfCompany:       "ACME LIMITED",
		CINNumber:           "L12345MH2000PLC000001",
		SearchReferenceID:   "999",
		DateOfIncorporation: "01.01.2000",
		UDIN:                "UDIN-1",
		RegisteredOffice:    "Nariman Point, Mumbai",
	}, header)

	t.Run("reference id falls back to text", func(t *testing.T) {
		partial := &HeaderOverride{CompanyName: strPtr("ACME LIMITED")}
		header := ResolveHeader(sampleReport, partial)
		assert.Equal(t, "ACME LIMITED", header.NameOfCompany)
		assert.Equal(t, "202400123456", header.SearchReferenceID)
		assert.Equal(t, DefaultValue, header.CINNumber)
		assert.Equal(t, DefaultValue, header.DateOfIncorporation)
		assert.Equal(t, DefaultValue, header.UDIN)
		assert.Equal(t, DefaultValue, header.RegisteredOffice)
	})

	t.Run("empty override uses fallbacks", func(t *testing.T) {
		header := ResolveHeader(sampleReport, &HeaderOverride{})
		assert.Equal(t, ResolveHeader(sampleReport, nil), header)
		assert.Equal(t, fallbackCompanyName, header.NameOfCompany)
		assert.Equal(t, fallbackCIN, header.CINNumber)
		assert.Equal(t, "202400123456", header.SearchReferenceID)
	})

	t.Run("decoded from JSON", func(t *testing.T) {
		var o HeaderOverride
		require.NoError(t, json.Unmarshal([]byte(`{"companyName":"ACME","udin":"U-9"}`), &o))
		header := ResolveHeader(sampleReport, &o)
		assert.Equal(t, "ACME", header.NameOfCompany)
		assert.Equal(t, "U-9", header.UDIN)
		assert.Equal(t, "202400123456", header.SearchReferenceID)
	})
}

// TestAssembleSource 测试转换失败的处理
func TestAssembleSource(t *testing.T) {
	converter := TextConverterFunc(func(ctx context.Context, src Source) (TextBlob, error) {
		if src.Name == "bad.pdf" {
			return "", errors.New("corrupt xref table")
		}
		return TextBlob(src.Content), nil
	})
	a := NewAssembler(converter)

	record, header, err := a.AssembleSource(context.Background(), Source{Name: "good.txt", Content: []byte(sampleReport)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "200045678901", record.Asset[FieldAssetID])
	assert.Equal(t, "202400123456", header.SearchReferenceID)

	_, _, err = a.AssembleSource(context.Background(), Source{Name: "bad.pdf"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConversion))
	assert.Contains(t, err.Error(), "corrupt xref table")

	_, _, err = NewAssembler(nil).AssembleSource(context.Background(), Source{Name: "x.pdf"}, nil)
	assert.True(t, errors.Is(err, ErrConversion))
}

// TestAssembleSource_Panic 转换器panic时转为错误
func TestAssembleSource_Panic(t *testing.T) {
	converter := TextConverterFunc(func(ctx context.Context, src Source) (TextBlob, error) {
		panic("boom")
	})

	_, _, err := NewAssembler(converter).AssembleSource(context.Background(), Source{Name: "p.pdf"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
