package prompt

// Instructions sent with each uploaded document image. The JSON examples are
// advisory; replies are parsed leniently.

const Damage = `Analyze the uploaded image and determine the severity of the damage visible in the picture. Consider visible cracks, dents, deformations, discoloration, or any structural compromise. Based on your analysis, provide a damage_severity_score ranging from 0 to 1, where:
0 means no visible damage, and
1 means extremely severe or total damage.
Return only a JSON object in the following format:
{
"damage_severity_score": [value between 0 and 1]
}`

const Identity = `Analyze the uploaded image, which contains a Malaysian Identification Card (IC) and a Malaysian Driving License. Extract and evaluate the following:
ic_number: The Malaysian IC number as an integer (exclude any dashes or formatting).
license_type_missing_flag: Return true if the license type/class is not visible or is illegible due to damage; otherwise, return false.
Respond only in the following JSON format:
{
"ic_number": 123456789012,
"license_type_missing_flag": false
}`

const PoliceReport = `Analyze the uploaded image or scanned document of a Malaysian police report related to a vehicle accident. Extract and infer the following information:
claim_reported_to_police_flag: Return true if the report confirms the incident was officially reported to the police; otherwise, false.
time_to_report_days: Calculate the number of days between the date of the incident and the date it was reported to the police. the date of the incident can be taken in pengadu menyatakan and minus it with tarikh above
at_fault_flag: Return true if the report suggests that the individual named in the report is at fault; otherwise, false. read through pengadu menyatakan and find out who's at fault
num_third_parties: Count the number of third-party individuals or vehicles involved in the incident.
num_witnesses: Count the number of witnesses mentioned in the report.
by looking through how many names in pengadu menyatakan and find out how many
Return your response only in the following JSON format:
{
"claim_reported_to_police_flag": true,
"time_to_report_days": 2,
"at_fault_flag": false,
"num_third_parties": 1,
"num_witnesses": 2
}`

const InsurancePolicy = `Analyze the uploaded image or document of a Malaysian vehicle insurance policy report. Extract and infer the following details:
vehicle_make: The make/brand of the insured vehicle (e.g., Perodua, Proton, Toyota).
vehicle_age_years: The age of the vehicle in full years, based on its registration or manufacturing year.
policy_expired_flag: Return true if the policy has expired as of today's date; otherwise, false.
months_as_customer: The total number of months the policyholder has been a customer with the insurance company (use available policy history or renewal info).
coverage_amount: The insured sum or total coverage amount in MYR (Malaysian Ringgit).
deductible_amount: The deductible amount (in MYR) the policyholder must pay out-of-pocket before insurance coverage applies.
Return your response only in the following JSON format:
{
"vehicle_make": "Perodua",
"vehicle_age_years": 5,
"policy_expired_flag": false,
"months_as_customer": 24,
"coverage_amount": 30000,
"deductible_amount": 500
}`

const ClaimReport = `Analyze the uploaded image or document of a Malaysian insurance claim report related to a vehicle policy. Extract and interpret the following details:

repair_amount: The total cost of repair claimed, in MYR (Malaysian Ringgit).

claim_description: A concise summary (1-2 sentences) of the claim reason or incident described in the report.

approval_flag: Return true if the claim has been approved; otherwise, return false.

customer_background: Provide a short description (1-2 sentences) of the customer's profile based on the report (e.g., driving history, past claims, loyalty status).

Return your response only in the following JSON format:
{
"repair_amount": 5000,
"claim_description": "Vehicle was involved in a rear-end collision at traffic light junction, causing damage to rear bumper and boot.",
"approval_flag": true,
"customer_background": "Customer has been insured for 3 years with no previous claims, maintaining a clean driving record."
}`
