package accounting

import (
	"sort"
	"strings"

	"pinkilang/internal/models"
)

// AccountType is the ledger category of an account.
type AccountType string

const (
	TypeAsset     AccountType = "Asset"
	TypeLiability AccountType = "Liability"
	TypeEquity    AccountType = "Equity"
	TypeRevenue   AccountType = "Revenue"
	TypeCOGS      AccountType = "COGS"
	TypeExpense   AccountType = "Expense"
)

// Side is the normal balance side of an account.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// Role tells the reports how an account behaves beyond its type.
type Role string

const (
	RoleNone                    Role = ""
	RoleCash                    Role = "cash"
	RoleWorkingCapital          Role = "working_capital"
	RoleFixedAsset              Role = "fixed_asset"
	RoleAccumulatedDepreciation Role = "accumulated_depreciation"
	RoleBorrowing               Role = "borrowing"
	RoleCapital                 Role = "capital"
	RoleDraw                    Role = "draw"
	RoleBeginningInventory      Role = "beginning_inventory"
	RolePurchases               Role = "purchases"
	RoleEndingInventory         Role = "ending_inventory"
	RoleOperating               Role = "operating"
	RoleDepreciation            Role = "depreciation"
	RoleOtherExpense            Role = "other"
)

// Statement is the financial statement an account closes into.
type Statement string

const (
	BalanceSheet    Statement = "balance_sheet"
	IncomeStatement Statement = "income_statement"
)

// Canonical account names.
const (
	AccKas                 = "Kas"
	AccBank                = "Bank"
	AccPiutangUsaha        = "Piutang Usaha"
	AccPersediaan          = "Persediaan Barang Dagang"
	AccPerlengkapan        = "Perlengkapan"
	AccSewaDibayarDimuka   = "Sewa Dibayar Dimuka"
	AccPeralatan           = "Peralatan"
	AccAkumulasiPenyusutan = "Akumulasi Penyusutan"
	AccUtangUsaha          = "Utang Usaha"
	AccUtangGaji           = "Utang Gaji"
	AccUtangBank           = "Utang Bank"
	AccModalPemilik        = "Modal Pemilik"
	AccPrive               = "Prive"
	AccPenjualan           = "Penjualan"
	AccPendapatanLain      = "Pendapatan Lain-lain"
	AccHPP                 = "Harga Pokok Penjualan"
	AccPersediaanAwal      = "Persediaan Awal"
	AccPembelian           = "Pembelian"
	AccPersediaanAkhir     = "Persediaan Akhir"
	AccBebanPerlengkapan   = "Beban Perlengkapan"
	AccBebanListrikAir     = "Beban Listrik dan Air"
	AccBebanSewa           = "Beban Sewa"
	AccBebanGaji           = "Beban Gaji"
	AccBebanPenyusutan     = "Beban Penyusutan"
	AccBebanLain           = "Beban Lain-lain"
	AccBebanBunga          = "Beban Bunga"
)

// placeholderCode is stored by clients that have no account code.
const placeholderCode = "0000"

// AccountDef is one row of the classification table.
type AccountDef struct {
	Code   string      `json:"code"`
	Name   string      `json:"name"`
	Type   AccountType `json:"type"`
	Normal Side        `json:"normal"`
	Role   Role        `json:"role,omitempty"`
}

// Statement returns the statement the account closes into.
func (d AccountDef) Statement() Statement {
	switch d.Type {
	case TypeRevenue, TypeCOGS, TypeExpense:
		return IncomeStatement
	}
	return BalanceSheet
}

// IsOperatingExpense reports whether the account is an operating expense.
// Expense accounts without an operating role are "other" expenses.
func (d AccountDef) IsOperatingExpense() bool {
	return d.Type == TypeExpense && (d.Role == RoleOperating || d.Role == RoleDepreciation)
}

// Source tells how an account was classified.
type Source string

const (
	SourceCode    Source = "code"
	SourceName    Source = "name"
	SourceAlias   Source = "alias"
	SourcePrefix  Source = "prefix"
	SourceKeyword Source = "keyword"
	SourceDefault Source = "default"
)

// Classification is the result of looking an account up in the chart.
type Classification struct {
	AccountDef
	Source       Source `json:"source"`
	Unclassified bool   `json:"unclassified"`
}

var canonicalAccounts = []AccountDef{
	{"1110", AccKas, TypeAsset, SideDebit, RoleCash},
	{"1120", AccBank, TypeAsset, SideDebit, RoleCash},
	{"1130", AccPiutangUsaha, TypeAsset, SideDebit, RoleWorkingCapital},
	{"1140", AccPersediaan, TypeAsset, SideDebit, RoleWorkingCapital},
	{"1150", AccPerlengkapan, TypeAsset, SideDebit, RoleWorkingCapital},
	{"1160", AccSewaDibayarDimuka, TypeAsset, SideDebit, RoleWorkingCapital},
	{"1210", AccPeralatan, TypeAsset, SideDebit, RoleFixedAsset},
	{"1220", AccAkumulasiPenyusutan, TypeAsset, SideCredit, RoleAccumulatedDepreciation},
	{"2110", AccUtangUsaha, TypeLiability, SideCredit, RoleWorkingCapital},
	{"2120", AccUtangGaji, TypeLiability, SideCredit, RoleWorkingCapital},
	{"2210", AccUtangBank, TypeLiability, SideCredit, RoleBorrowing},
	{"3110", AccModalPemilik, TypeEquity, SideCredit, RoleCapital},
	{"3120", AccPrive, TypeEquity, SideDebit, RoleDraw},
	{"4110", AccPenjualan, TypeRevenue, SideCredit, RoleNone},
	{"4210", AccPendapatanLain, TypeRevenue, SideCredit, RoleNone},
	{"5110", AccHPP, TypeCOGS, SideDebit, RoleNone},
	{"5120", AccPersediaanAwal, TypeCOGS, SideDebit, RoleBeginningInventory},
	{"5130", AccPembelian, TypeCOGS, SideDebit, RolePurchases},
	{"5140", AccPersediaanAkhir, TypeCOGS, SideCredit, RoleEndingInventory},
	{"6110", AccBebanPerlengkapan, TypeExpense, SideDebit, RoleOperating},
	{"6120", AccBebanListrikAir, TypeExpense, SideDebit, RoleOperating},
	{"6130", AccBebanSewa, TypeExpense, SideDebit, RoleOperating},
	{"6140", AccBebanGaji, TypeExpense, SideDebit, RoleOperating},
	{"6150", AccBebanPenyusutan, TypeExpense, SideDebit, RoleDepreciation},
	{"6910", AccBebanLain, TypeExpense, SideDebit, RoleOtherExpense},
	{"6920", AccBebanBunga, TypeExpense, SideDebit, RoleOtherExpense},
}

var canonicalAliases = map[string]string{
	"cash":                           AccKas,
	"kas tunai":                      AccKas,
	"rekening bank":                  AccBank,
	"piutang":                        AccPiutangUsaha,
	"piutang dagang":                 AccPiutangUsaha,
	"accounts receivable":            AccPiutangUsaha,
	"persediaan":                     AccPersediaan,
	"persediaan barang":              AccPersediaan,
	"inventory":                      AccPersediaan,
	"aset tetap":                     AccPeralatan,
	"peralatan kantor":               AccPeralatan,
	"akumulasi penyusutan peralatan": AccAkumulasiPenyusutan,
	"hutang usaha":                   AccUtangUsaha,
	"hutang dagang":                  AccUtangUsaha,
	"utang dagang":                   AccUtangUsaha,
	"accounts payable":               AccUtangUsaha,
	"hutang gaji":                    AccUtangGaji,
	"hutang bank":                    AccUtangBank,
	"modal":                          AccModalPemilik,
	"modal usaha":                    AccModalPemilik,
	"prive pemilik":                  AccPrive,
	"pengambilan pribadi":            AccPrive,
	"pendapatan penjualan":           AccPenjualan,
	"penjualan barang":               AccPenjualan,
	"pendapatan lainnya":             AccPendapatanLain,
	"hpp":                            AccHPP,
	"harga pokok":                    AccHPP,
	"cogs":                           AccHPP,
	"beban listrik":                  AccBebanListrikAir,
	"beban air":                      AccBebanListrikAir,
	"beban listrik & air":            AccBebanListrikAir,
	"beban penyusutan peralatan":     AccBebanPenyusutan,
	"beban lainnya":                  AccBebanLain,
	"beban lain lain":                AccBebanLain,
	"biaya lain-lain":                AccBebanLain,
	"beban gaji karyawan":            AccBebanGaji,
	"beban sewa gedung":              AccBebanSewa,
	"beban perlengkapan kantor":      AccBebanPerlengkapan,
	"persediaan barang dagang awal":  AccPersediaanAwal,
	"persediaan barang dagang akhir": AccPersediaanAkhir,
	"pembelian barang dagang":        AccPembelian,
}

var prefixDefs = map[byte]AccountDef{
	'1': {Type: TypeAsset, Normal: SideDebit},
	'2': {Type: TypeLiability, Normal: SideCredit},
	'3': {Type: TypeEquity, Normal: SideCredit},
	'4': {Type: TypeRevenue, Normal: SideCredit},
	'5': {Type: TypeCOGS, Normal: SideDebit},
	'6': {Type: TypeExpense, Normal: SideDebit},
}

// Chart is the account classification table: canonical accounts, custom
// accounts and aliases. A Chart is immutable once built.
type Chart struct {
	accounts []AccountDef
	byCode   map[string]AccountDef
	byName   map[string]AccountDef
	aliases  map[string]string
}

var defaultChart = NewChart(canonicalAccounts, canonicalAliases)

// DefaultChart returns the canonical chart of accounts.
func DefaultChart() *Chart {
	return defaultChart
}

// NewChart builds a chart from account definitions and an alias table
// mapping alternative names to account names.
func NewChart(defs []AccountDef, aliases map[string]string) *Chart {
	c := &Chart{
		byCode:  make(map[string]AccountDef, len(defs)),
		byName:  make(map[string]AccountDef, len(defs)),
		aliases: make(map[string]string, len(aliases)),
	}
	for _, d := range defs {
		c.add(d)
	}
	for alias, name := range aliases {
		c.aliases[normalizeName(alias)] = name
	}
	return c
}

func (c *Chart) add(d AccountDef) {
	if d.Normal == "" {
		d.Normal = defaultNormal(d.Type)
	}
	key := normalizeName(d.Name)
	if old, ok := c.byName[key]; ok {
		c.replace(old, d)
	} else if old, ok := c.byCode[d.Code]; ok && d.Code != "" {
		c.replace(old, d)
	} else {
		c.accounts = append(c.accounts, d)
	}
	c.byName[key] = d
	if d.Code != "" {
		c.byCode[d.Code] = d
	}
}

func (c *Chart) replace(old, d AccountDef) {
	if old.Code != d.Code {
		delete(c.byCode, old.Code)
	}
	if old.Name != d.Name {
		delete(c.byName, normalizeName(old.Name))
	}
	for i := range c.accounts {
		if c.accounts[i].Code == old.Code && c.accounts[i].Name == old.Name {
			c.accounts[i] = d
			return
		}
	}
	c.accounts = append(c.accounts, d)
}

// With returns a copy of the chart extended with custom accounts. Custom
// accounts override canonical ones that share a code or name.
func (c *Chart) With(defs []AccountDef, aliases map[string]string) *Chart {
	out := NewChart(c.accounts, nil)
	for k, v := range c.aliases {
		out.aliases[k] = v
	}
	for _, d := range defs {
		out.add(d)
	}
	for alias, name := range aliases {
		out.aliases[normalizeName(alias)] = name
	}
	return out
}

// Accounts returns the chart rows sorted by code.
func (c *Chart) Accounts() []AccountDef {
	out := make([]AccountDef, len(c.accounts))
	copy(out, c.accounts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Lookup finds an account by name or alias.
func (c *Chart) Lookup(name string) (AccountDef, bool) {
	key := normalizeName(name)
	if d, ok := c.byName[key]; ok {
		return d, true
	}
	if target, ok := c.aliases[key]; ok {
		if d, ok := c.byName[normalizeName(target)]; ok {
			return d, true
		}
	}
	return AccountDef{}, false
}

// MustLookup is Lookup for names known to be in the chart.
func (c *Chart) MustLookup(name string) AccountDef {
	d, ok := c.Lookup(name)
	if !ok {
		panic("accounting: account not in chart: " + name)
	}
	return d
}

// CanonicalName folds aliases onto their chart name. Unknown names are
// returned trimmed but otherwise unchanged.
func (c *Chart) CanonicalName(name string) string {
	if d, ok := c.Lookup(name); ok {
		return d.Name
	}
	return strings.Join(strings.Fields(name), " ")
}

// Classify resolves an account by exact code, then name or alias, then
// code prefix, then name keywords. Anything left is treated as a balance
// sheet account and flagged as unclassified.
func (c *Chart) Classify(code, name string) Classification {
	code = strings.TrimSpace(code)
	hasCode := code != "" && code != placeholderCode
	if hasCode {
		if d, ok := c.byCode[code]; ok {
			return Classification{AccountDef: d, Source: SourceCode}
		}
	}
	key := normalizeName(name)
	if d, ok := c.byName[key]; ok {
		return Classification{AccountDef: d, Source: SourceName}
	}
	if target, ok := c.aliases[key]; ok {
		if d, ok := c.byName[normalizeName(target)]; ok {
			return Classification{AccountDef: d, Source: SourceAlias}
		}
	}
	display := strings.Join(strings.Fields(name), " ")
	if hasCode {
		if d, ok := prefixDefs[code[0]]; ok {
			d.Code = code
			d.Name = display
			if kw, ok := keywordDef(key); ok && kw.Type == d.Type {
				d.Role = kw.Role
				d.Normal = kw.Normal
			}
			return Classification{AccountDef: d, Source: SourcePrefix}
		}
	}
	if d, ok := keywordDef(key); ok {
		d.Code = code
		d.Name = display
		return Classification{AccountDef: d, Source: SourceKeyword}
	}
	return Classification{
		AccountDef:   AccountDef{Code: code, Name: display, Normal: SideDebit},
		Source:       SourceDefault,
		Unclassified: true,
	}
}

// Statement returns the statement the classified account closes into.
// Unclassified accounts go to the balance sheet.
func (c Classification) Statement() Statement {
	if c.Unclassified {
		return BalanceSheet
	}
	return c.AccountDef.Statement()
}

type keyword struct {
	words []string
	def   AccountDef
}

// Order matters: specific phrases come before the generic words they
// contain ("beban pokok" before "beban", "diterima dimuka" before
// "pendapatan", "piutang" before "utang").
var keywordTable = []keyword{
	{[]string{"akumulasi", "accumulated"}, AccountDef{Type: TypeAsset, Normal: SideCredit, Role: RoleAccumulatedDepreciation}},
	{[]string{"hpp", "harga pokok", "pokok penjualan", "cogs", "cost of goods", "cost of sales"}, AccountDef{Type: TypeCOGS, Normal: SideDebit}},
	{[]string{"diterima dimuka", "diterima di muka", "unearned", "deferred revenue"},
		AccountDef{Type: TypeLiability, Normal: SideCredit, Role: RoleWorkingCapital}},
	{[]string{"dibayar dimuka", "dibayar di muka", "prepaid"}, AccountDef{Type: TypeAsset, Normal: SideDebit, Role: RoleWorkingCapital}},
	{[]string{"penyusutan", "depresiasi", "depreciation"}, AccountDef{Type: TypeExpense, Normal: SideDebit, Role: RoleDepreciation}},
	{[]string{"beban listrik", "beban air", "beban sewa", "beban gaji", "beban perlengkapan", "beban upah", "utilit", "salary", "payroll", "rent expense", "supplies expense"},
		AccountDef{Type: TypeExpense, Normal: SideDebit, Role: RoleOperating}},
	{[]string{"beban", "biaya", "expense"}, AccountDef{Type: TypeExpense, Normal: SideDebit, Role: RoleOtherExpense}},
	{[]string{"pendapatan", "penjualan", "revenue", "sales", "income"}, AccountDef{Type: TypeRevenue, Normal: SideCredit}},
	{[]string{"prive", "drawing"}, AccountDef{Type: TypeEquity, Normal: SideDebit, Role: RoleDraw}},
	{[]string{"modal", "capital", "ekuitas", "equity"}, AccountDef{Type: TypeEquity, Normal: SideCredit, Role: RoleCapital}},
	{[]string{"piutang", "receivable"}, AccountDef{Type: TypeAsset, Normal: SideDebit, Role: RoleWorkingCapital}},
	{[]string{"utang bank", "hutang bank", "pinjaman", "loan"}, AccountDef{Type: TypeLiability, Normal: SideCredit, Role: RoleBorrowing}},
	{[]string{"utang", "hutang", "payable"}, AccountDef{Type: TypeLiability, Normal: SideCredit, Role: RoleWorkingCapital}},
	{[]string{"persediaan", "inventory", "perlengkapan", "supplies"},
		AccountDef{Type: TypeAsset, Normal: SideDebit, Role: RoleWorkingCapital}},
	{[]string{"peralatan", "kendaraan", "gedung", "bangunan", "tanah", "mesin", "equipment", "aset tetap"},
		AccountDef{Type: TypeAsset, Normal: SideDebit, Role: RoleFixedAsset}},
	{[]string{"kas", "cash", "bank"}, AccountDef{Type: TypeAsset, Normal: SideDebit, Role: RoleCash}},
}

func keywordDef(normalized string) (AccountDef, bool) {
	for _, kw := range keywordTable {
		for _, w := range kw.words {
			if strings.Contains(normalized, w) {
				return kw.def, true
			}
		}
	}
	return AccountDef{}, false
}

func defaultNormal(t AccountType) Side {
	switch t {
	case TypeLiability, TypeEquity, TypeRevenue:
		return SideCredit
	}
	return SideDebit
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// DefFromAccount converts a custom accounts row into a chart definition.
func DefFromAccount(a models.Account) (AccountDef, []string) {
	d := AccountDef{
		Code:   strings.TrimSpace(a.AccountCode),
		Name:   strings.Join(strings.Fields(a.AccountName), " "),
		Type:   AccountType(a.AccountType),
		Normal: Side(a.NormalBalance),
		Role:   Role(a.Role),
	}
	if d.Normal == "" {
		d.Normal = defaultNormal(d.Type)
	}
	var aliases []string
	for _, alias := range strings.Split(a.Aliases, ",") {
		if alias = strings.TrimSpace(alias); alias != "" {
			aliases = append(aliases, alias)
		}
	}
	return d, aliases
}

// ChartFromAccounts extends the canonical chart with active custom rows.
func ChartFromAccounts(rows []models.Account) *Chart {
	if len(rows) == 0 {
		return DefaultChart()
	}
	defs := make([]AccountDef, 0, len(rows))
	aliases := make(map[string]string)
	for _, row := range rows {
		if !row.IsActive {
			continue
		}
		d, as := DefFromAccount(row)
		defs = append(defs, d)
		for _, a := range as {
			aliases[a] = d.Name
		}
	}
	return DefaultChart().With(defs, aliases)
}
