package moneyforward

// everything below mirrors the site's undocumented markup and form protocol,
// nothing outside this package should depend on any of it.

const (
	defaultBaseUrl     = "https://moneyforward.com"
	defaultIdentityUrl = "https://id.moneyforward.com"

	pathHome          = "/"
	pathSignIn        = "/sign_in"
	pathIdentitySign  = "/sign_in"
	pathPolling       = "/accounts/polling"
	pathLedger        = "/cf"
	pathLedgerFetch   = "/cf/fetch"
	pathCreate        = "/cf/create"
	pathUpdate        = "/cf/update"
	pathPartner       = "/cf/partner_account"
	pathDeletePattern = "/cf/%d"
)

const (
	selCsrfToken      = "meta[name=csrf-token]"
	selRemoteLinks    = "a[data-remote=true]"
	selManualAccounts = "#registered-manual-accounts li.account a[href^='/accounts/show']"
	selLinkedAccounts = "#registered-accounts li.account a[href^='/accounts/show']"
	selEditAccounts   = "select#user_asset_act_sub_account_id_hash option"
	selIncomeMenu     = "ul.dropdown-menu.main_menu.plus"
	selExpenseMenu    = "ul.dropdown-menu.main_menu.minus"
	selLargeSubmenu   = "li.dropdown-submenu"
	selLargeName      = "a.l_c_name"
	selMiddleName     = "a.m_c_name"

	selRowDisabled = ".icon-ban-circle"
	selRowDate     = "td.date"
	selRowAmount   = "td.amount"
	selRowAccount  = "td.calc[style]"
	selRowTransfer = "div.transfer_account_box"
	selRowLarge    = "td.lctg"
	selRowMiddle   = "td.mctg"
	selRowContent  = "td.content"
	selRowMemo     = "td.memo"

	selFixedSubAccount = "input[name=partner_sub_account_id_hash]"

	manualAccountPrefix = "/accounts/show_manual/"
	linkedAccountPrefix = "/accounts/show/"
	rowIdPrefix         = "js-transaction-"
	transferMarker      = "振替"
	uncategorized       = "未分類"
)

const (
	// targets of the jquery calls wrapping html fragments in script responses
	fragmentTransactions = ".list_body"
	fragmentPartner      = "#js-partner-account"
	fragmentSubAccount   = "#js-partner-sub-account"
)

const (
	fieldAuthenticityToken = "authenticity_token"
	fieldMethod            = "_method"
	fieldEmail             = "mfid_user[email]"
	fieldPassword          = "mfid_user[password]"
	fieldSelectAccount     = "select_account"

	fieldFetchFrom      = "from"
	fieldFetchService   = "service_id"
	fieldFetchAccountId = "account_id_hash"

	fieldId              = "user_asset_act[id]"
	fieldTableName       = "user_asset_act[table_name]"
	fieldUpdatedAt       = "user_asset_act[updated_at]"
	fieldRecurring       = "user_asset_act[recurring_flag]"
	fieldAmount          = "user_asset_act[amount]"
	fieldContent         = "user_asset_act[content]"
	fieldMemo            = "user_asset_act[memo]"
	fieldIsTransfer      = "user_asset_act[is_transfer]"
	fieldIsIncome        = "user_asset_act[is_income]"
	fieldSubAccount      = "user_asset_act[sub_account_id_hash]"
	fieldSubAccountFrom  = "user_asset_act[sub_account_id_hash_from]"
	fieldSubAccountTo    = "user_asset_act[sub_account_id_hash_to]"
	fieldLargeCategory   = "user_asset_act[large_category_id]"
	fieldMiddleCategory  = "user_asset_act[middle_category_id]"
	fieldPartnerAccount  = "user_asset_act[partner_account_id_hash]"
	fieldPartnerSub      = "user_asset_act[partner_sub_account_id_hash]"
	fieldPartnerAct      = "user_asset_act[partner_act_id]"
	fieldChangeType      = "change_type"
	fieldCommit          = "commit"
	fieldPartnerLookupId = "user_asset_act_id"
	fieldPartnerLookupAc = "partner_account_id_hash"

	tableName     = "user_asset_act"
	commitLabel   = "保存する"
	dateLayout    = "2006/01/02"
	methodPut     = "put"
	methodPost    = "post"
	methodDelete  = "delete"
	changeEnable  = "enable_transfer"
	changeDisable = "disable_transfer"
	changePartner = "change_transfer_partner"
)
