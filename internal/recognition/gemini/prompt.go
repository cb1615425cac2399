package gemini

const ribPrompt = `You are reading a French bank account identity document (RIB, "Relevé d'Identité Bancaire").
The image may be a scan, a photo or a rendered PDF page. Read all printed text and extract:

- iban: the IBAN, without spaces (e.g. FR7630004009090000134858517)
- bic: the BIC / SWIFT code (8 or 11 characters)
- bank_code: "Code Banque", 5 digits
- branch_code: "Code Guichet", 5 digits
- account_number: "Numéro de compte", 11 characters
- rib_key: "Clé RIB", 2 digits
- holder_address: the account holder name and postal address on a single line

Return ONLY a JSON object with exactly these keys. Use null for anything you cannot read with
confidence. Do not guess digits. Do not wrap the JSON in markdown.`

const outputSchema = `{
  "type": "object",
  "properties": {
    "iban":           {"type": ["string", "null"]},
    "bic":            {"type": ["string", "null"]},
    "bank_code":      {"type": ["string", "null"]},
    "branch_code":    {"type": ["string", "null"]},
    "account_number": {"type": ["string", "null"]},
    "rib_key":        {"type": ["string", "null"]},
    "holder_address": {"type": ["string", "null"]}
  }
}`
