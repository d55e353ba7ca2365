package patterns

// Pattern families for conversational scam detection, tuned for the Indian
// payments ecosystem (UPI, KYC, IFSC banking). Family weights and caps were
// calibrated against labeled scam/ham SMS conversations; the composite
// families (upi_scam, financial_coercion) intentionally carry the highest
// per-match weight because a single hit is already a strong signal.

// registerUrgencyPatterns covers time-pressure language.
// Per-match 0.05, cap 0.15.
func (r *Registry) registerUrgencyPatterns() {
	f := FamilyUrgency
	r.configure(f, 0.05, 0.15)

	r.register(f, "urgent", `\burgent\b`)
	r.register(f, "immediately", `\bimmediately\b`)
	r.register(f, "today", `\btoday\b`)
	r.register(f, "now", `\bnow\b`)
	r.register(f, "asap", `\basap\b`)
	r.register(f, "quick", `\bquick\b`)
	r.register(f, "fast", `\bfast\b`)
	r.register(f, "hurry", `\bhurry\b`)
	r.register(f, "last_chance", `\blast\s+chance\b`)
	r.register(f, "limited_time", `\blimited\s+time\b`)
	r.register(f, "expiring", `\bexpir(?:e|ing|ed)\b`)
	r.register(f, "within_minutes", `\bwithin\s+\d+\s*(?:min|mins|minutes|hours|hrs)\b`)
	r.register(f, "today_itself", `\btoday\s+itself\b`)
	r.register(f, "immediate_action", `\bimmediate\s+action\b`)
	r.register(f, "act_now", `\bact\s+now\b`)
	r.register(f, "deadline", `\bdeadline\b`)
	r.register(f, "expires_soon", `\bexpires?\s+(?:today|soon|shortly)\b`)
	r.register(f, "no_delay", `\bno\s+delay\b`)
}

// registerThreatPatterns covers fear-induction language.
// Per-match 0.08, cap 0.25.
func (r *Registry) registerThreatPatterns() {
	f := FamilyThreat
	r.configure(f, 0.08, 0.25)

	r.register(f, "blocked", `\bblock(?:ed)?\b`)
	r.register(f, "suspended", `\bsuspend(?:ed)?\b`)
	r.register(f, "deactivated", `\bdeactivat(?:e|ed)\b`)
	r.register(f, "frozen", `\bfreez(?:e|ing)\b`)
	r.register(f, "closed", `\bclose[ds]?\b`)
	r.register(f, "legal_action", `\blegal\s+action\b`)
	r.register(f, "arrest", `\barrest(?:ed)?\b`)
	r.register(f, "police", `\bpolice\b`)
	r.register(f, "court", `\bcourt\b`)
	r.register(f, "penalty", `\bpenalt(?:y|ies)\b`)
	r.register(f, "fine", `\bfin(?:e|ed)\b`)
	r.register(f, "warrant", `\bwarrant(?:ed)?\b`)
	r.register(f, "service_terminated", `\bservice\s+(?:will\s+be\s+)?(?:stopped|terminated|disabled)\b`)
	r.register(f, "access_denied", `\baccess\s+(?:will\s+be\s+)?denied\b`)
	r.register(f, "account_restricted", `\baccount\s+(?:will\s+be\s+)?restricted\b`)
	r.register(f, "permanent_block", `\bpermanent\s+block\b`)
	r.register(f, "blacklisted", `\bblacklisted\b`)
	r.register(f, "complaint_registered", `\bcomplaint\s+registered\b`)
}

// registerRequestPatterns covers action verbs that push the victim to do
// something. Per-match 0.05, cap 0.15.
func (r *Registry) registerRequestPatterns() {
	f := FamilyRequest
	r.configure(f, 0.05, 0.15)

	r.register(f, "verify", `\bverif(?:y|ied)\b`)
	r.register(f, "confirm", `\bconfirm(?:ed)?\b`)
	r.register(f, "update", `\bupdat(?:e|ed)\b`)
	r.register(f, "provide", `\bprovid(?:e|ed)\b`)
	r.register(f, "share", `\bshar(?:e|ed)\b`)
	r.register(f, "send", `\bsend(?:ing|(?:t|ed))?\b`)
	r.register(f, "transfer", `\btransfer(?:red)?\b`)
	r.register(f, "pay", `\bpa(?:y|id)\b`)
	r.register(f, "click", `\bclick(?:ed)?\b`)
	r.register(f, "link", `\blink\b`)
	r.register(f, "enter", `\benter(?:ed)?\b`)
	r.register(f, "submit", `\bsubmit(?:ted)?\b`)
	r.register(f, "reenter", `\bre-?enter\b`)
	r.register(f, "reverify", `\bre-?verify\b`)
	r.register(f, "upload", `\bupload(?:ed)?\b`)
	r.register(f, "scan", `\bscan(?:ned)?\b`)
	r.register(f, "forward", `\bforward(?:ed)?\b`)
	r.register(f, "send_back", `\bsend\s+back\b`)
	r.register(f, "fill", `\bfill(?:ed)?\b`)
}

// registerSensitiveDataPatterns covers credential and identity terms.
// Per-match 0.08, cap 0.25. Mostly nouns, so no tense variants.
func (r *Registry) registerSensitiveDataPatterns() {
	f := FamilySensitiveData
	r.configure(f, 0.08, 0.25)

	r.register(f, "otp", `\botp\b`)
	r.register(f, "pin", `\bpin\b`)
	r.register(f, "password", `\bpassword\b`)
	r.register(f, "cvv", `\bcvv\b`)
	r.register(f, "card_number", `\bcard\s+number\b`)
	r.register(f, "account_number", `\baccount\s+number\b`)
	r.register(f, "bank_details", `\bbank\s+details\b`)
	r.register(f, "upi", `\bupi\b`)
	r.register(f, "aadhaar", `\baadhaar\b`)
	r.register(f, "pan", `\bpan\b`)
	r.register(f, "kyc", `\bkyc\b`)
	r.register(f, "upi_credentials", `\bupi\s+(?:id|pin|password)\b`)
	r.register(f, "mpin", `\bm-pin\b`)
	r.register(f, "tpin", `\bt-pin\b`)
	r.register(f, "atm_pin", `\batm\s+pin\b`)
	r.register(f, "virtual_payment", `\bvirtual\s+payment\b`)
}

// registerImpersonationPatterns covers authority and brand claims.
// Per-match 0.05, cap 0.10.
func (r *Registry) registerImpersonationPatterns() {
	f := FamilyImpersonation
	r.configure(f, 0.05, 0.10)

	r.register(f, "bank", `\bbank\b`)
	r.register(f, "rbi", `\brbi\b`)
	r.register(f, "sbi", `\bsbi\b`)
	r.register(f, "hdfc", `\bhdfc\b`)
	r.register(f, "icici", `\bicici\b`)
	r.register(f, "axis", `\baxis\b`)
	r.register(f, "paytm", `\bpaytm\b`)
	r.register(f, "gpay", `\bgpay\b`)
	r.register(f, "phonepe", `\bphonepe\b`)
	r.register(f, "amazon", `\bamazon\b`)
	r.register(f, "flipkart", `\bflipkart\b`)
	r.register(f, "customer_care", `\bcustomer\s+(?:care|service)\b`)
	r.register(f, "government", `\bgovernment\b`)
	r.register(f, "official", `\bofficials?\b`)
	r.register(f, "authorized", `\bauthorized\b`)
	r.register(f, "upi_team", `\bupi\s+team\b`)
	r.register(f, "payment_team", `\bpayment\s+team\b`)
	r.register(f, "security_team", `\bsecurity\s+team\b`)
	r.register(f, "verification_team", `\bverification\s+team\b`)
	r.register(f, "technical_team", `\btechnical\s+team\b`)
	r.register(f, "fraud_department", `\bfraud\s+department\b`)
	r.register(f, "compliance_team", `\bcompliance\s+team\b`)
}

// registerMoneyPatterns covers currency amounts and transaction lures.
// Per-match 0.05, cap 0.10.
func (r *Registry) registerMoneyPatterns() {
	f := FamilyMoney
	r.configure(f, 0.05, 0.10)

	r.register(f, "rupee_symbol", `₹\s*\d+(?:\.\d+)?`)
	r.register(f, "rs_amount", `\brs\.?\s*\d+(?:\.\d+)?`)
	r.register(f, "rupees", `\brupees?\b`)
	r.register(f, "inr", `\binr\b`)
	r.register(f, "lakh", `\blakh\b`)
	r.register(f, "crore", `\bcrore\b`)
	r.register(f, "prize", `\bprize\b`)
	r.register(f, "lottery", `\blotter(?:y|ies)\b`)
	r.register(f, "winner", `\bwinner\b`)
	r.register(f, "cashback", `\bcashback\b`)
	r.register(f, "reward", `\breward\b`)
	r.register(f, "bonus", `\bbonus\b`)
	r.register(f, "amount", `\bamount\b`)
	r.register(f, "refund", `\brefund\b`)
	r.register(f, "transaction", `\btransaction\b`)
	r.register(f, "payment", `\bpayment\b`)
}

// registerUPIScamPatterns covers India-specific UPI scam constructions.
// Composite phrases, so one hit already means a lot: per-match 0.10, cap 0.20.
func (r *Registry) registerUPIScamPatterns() {
	f := FamilyUPIScam
	r.configure(f, 0.10, 0.20)

	r.register(f, "share_upi", `(?:share|send|provide|give).*upi`)
	r.register(f, "upi_blocked", `upi.*(?:blocked|suspended|deactivated|frozen)`)
	r.register(f, "verify_upi", `(?:verify|update|confirm|reactivate).*upi`)
	r.register(f, "upi_expiring", `upi.*(?:expire|expiring|invalid)`)
	r.register(f, "link_bank_upi", `link.*(?:bank|account).*upi`)
	r.register(f, "upi_mandate", `upi.*mandate`)
	r.register(f, "auto_debit", `auto.*debit.*upi`)
	r.register(f, "collect_request", `collect.*request`)
	r.register(f, "accept_payment_request", `accept.*payment.*request`)
}

// registerFinancialCoercionPatterns covers threats tied to money or
// accounts. Per-match 0.10, cap 0.20.
func (r *Registry) registerFinancialCoercionPatterns() {
	f := FamilyFinancialCoercion
	r.configure(f, 0.10, 0.20)

	r.register(f, "account_blocked", `account.*(?:blocked|suspended|frozen|closed)`)
	r.register(f, "block_account", `(?:block|suspend|freeze|close).*account`)
	r.register(f, "card_blocked", `card.*(?:blocked|suspended|deactivated)`)
	r.register(f, "block_card", `(?:block|suspend|deactivate).*card`)
	r.register(f, "prevent_blocking", `(?:prevent|avoid|stop).*(?:blocking|suspension|closure)`)
	r.register(f, "update_kyc_now", `update.*kyc.*(?:immediately|today|now)`)
	r.register(f, "kyc_pending", `kyc.*(?:pending|incomplete|failed)`)
	r.register(f, "verify_identity_urgent", `(?:verify|confirm).*identity.*(?:urgent|immediate)`)
	r.register(f, "last_warning", `last.*(?:chance|warning).*(?:account|card|kyc)`)
}
