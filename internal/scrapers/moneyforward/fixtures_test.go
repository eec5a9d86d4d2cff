package moneyforward

import (
	"fmt"
	"strings"
)

const (
	signInToken = "signin-token"
	homeToken   = "home-token"
	ledgerToken = "ledger-token"

	testUsername = "user@example.com"
	testPassword = "correct horse"
)

const signInHtml = `<!DOCTYPE html>
<html>
<head><meta name="csrf-token" content="` + signInToken + `"></head>
<body><form action="/sign_in" method="post"><input name="mfid_user[email]"></form></body>
</html>`

const homeHtml = `<!DOCTYPE html>
<html>
<head><meta name="csrf-token" content="` + homeToken + `"></head>
<body>
<a data-remote="true" href="/aggregation_queue/bank-a">更新</a>
<a data-remote="true" href="/aggregation_queue/card-b">更新</a>
<a href="/not-remote">家計簿</a>
<section id="registered-manual-accounts">
	<ul>
		<li class="account"><a href="/accounts/show_manual/wallet-mf">
			財布
		</a></li>
		<li class="account"><a href="/accounts/show_manual/cash-mf">Cash Box</a></li>
	</ul>
</section>
<section id="registered-accounts">
	<ul>
		<li class="account"><a href="/accounts/show/bank-mf">Bank A</a></li>
		<li class="account"><a href="/accounts/show/card-mf">Card B</a></li>
		<li class="heading"><a href="/accounts/show/ignored">not an account</a></li>
	</ul>
</section>
</body>
</html>`

const ledgerHtml = `<!DOCTYPE html>
<html>
<head><meta name="csrf-token" content="` + ledgerToken + `"></head>
<body>
<form id="js-cf-manual-payment-entry-form">
	<select id="user_asset_act_sub_account_id_hash" name="user_asset_act[sub_account_id_hash]">
		<option value="">選択してください</option>
		<option value="wallet-edit">財布</option>
		<option value="bank-edit">Bank A</option>
		<option value="points-edit">Points</option>
	</select>
</form>
<ul class="dropdown-menu main_menu plus">
	<li class="dropdown-submenu">
		<a class="l_c_name" id="1">収入</a>
		<ul class="dropdown-menu sub_menu">
			<li><a class="m_c_name" id="101">給与</a></li>
			<li><a class="m_c_name" id="102">賞与</a></li>
		</ul>
	</li>
	<li class="dropdown-submenu">
		<a class="l_c_name" id="0">未分類</a>
		<ul class="dropdown-menu sub_menu">
			<li><a class="m_c_name" id="0">未分類</a></li>
		</ul>
	</li>
</ul>
<ul class="dropdown-menu main_menu minus">
	<li class="dropdown-submenu">
		<a class="l_c_name" id="11">食費</a>
		<ul class="dropdown-menu sub_menu">
			<li><a class="m_c_name" id="41">食料品</a></li>
			<li><a class="m_c_name" id="42">外食</a></li>
		</ul>
	</li>
	<li class="dropdown-submenu">
		<a class="l_c_name" id="12">特別な支出</a>
	</li>
	<li class="dropdown-submenu">
		<a class="l_c_name" id="0">未分類</a>
		<ul class="dropdown-menu sub_menu">
			<li><a class="m_c_name" id="0">未分類</a></li>
		</ul>
	</li>
</ul>
</body>
</html>`

func transactionRow(id int, date, content, amount, account, large, middle, memo string) string {
	return fmt.Sprintf(`<tr class="transaction_list js-cf-edit-container" id="js-transaction-%d">
	<td class="date" data-table-sortable-value="%d"><span>%s</span></td>
	<td class="content"><div><span>%s</span></div></td>
	<td class="amount"><span class="offset">%s</span></td>
	<td class="calc" style="text-align: left;">%s</td>
	<td class="lctg"><a href="#">%s</a></td>
	<td class="mctg"><a href="#">%s</a></td>
	<td class="memo">%s</td>
</tr>
`, id, id, date, content, amount, account, large, middle, memo)
}

const accountSelect = `<select name="user_asset_act[sub_account_id_hash]"><option value="wallet-edit">財布</option><option value="bank-edit">Bank A</option></select>`

var ledgerRows = strings.Join([]string{
	transactionRow(101, "03/05(火)", "スーパー", "-1,500", "\n財布\n"+accountSelect, "食費", "食料品", "weekly"),
	transactionRow(99, "03/25(月)", "給与 3月", "300,000", "Bank A"+accountSelect, "収入", "給与", ""),
	`<tr class="transaction_list mf-grayout" id="js-transaction-200">
	<td class="icon"><i class="icon-ban-circle"></i></td>
	<td class="date"><span>03/30(土)</span></td>
	<td class="content">計算対象外</td>
	<td class="amount"><span>-9,999</span></td>
	<td class="calc" style="text-align: left;">財布</td>
	<td class="lctg">未分類</td><td class="mctg">未分類</td><td class="memo"></td>
</tr>`,
	transactionRow(103, "03/05(火)", "口座振替", "¥-10,000 (振替)", `Bank A<div class="transfer_account_box">財布</div>`, "未分類", "未分類", ""),
	transactionRow(102, "03/05(火)", "カフェ", "-480", "Card B"+accountSelect, "食費", "外食", "with tax"),
}, "")

// jsEscape escapes html the way the server does before embedding it in a script.
func jsEscape(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"</", `<\/`,
	).Replace(s)
}

func appendScript(target, html string) string {
	return fmt.Sprintf(`$("%s").append("%s");
$(".js-loading").hide();`, target, jsEscape(html))
}

func htmlScript(target, html string) string {
	return fmt.Sprintf(`$("%s").html("%s");`, target, jsEscape(html))
}

const partnerAccountsFragment = `<select name="partner_account_id_hash">
	<option value="">選択してください</option>
	<option value="pa-bank">Bank A</option>
	<option value="pa-wallet">財布</option>
</select>`

const bankSubAccountsFragment = `<select name="partner_sub_account_id_hash">
	<option value="sub-1">普通預金</option>
	<option value="sub-2">定期預金</option>
</select>`

const walletSubAccountFragment = `<input type="hidden" name="partner_sub_account_id_hash" value="sub-wallet">`
