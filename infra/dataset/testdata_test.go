package dataset

import "strings"

const header = "Survey_Cycle,Location,Organization_Name,Total_Employees,Surveys_Returned,Drive_Alone_Rate," +
	"Weekly_Drive_Alone_Trips,Weekly_Bus_Trips,Weekly_Train_Trips,Weekly_Carpool_Trips,Weekly_Vanpool_Trips," +
	"Weekly_Walk_Trips,Weekly_Bike_Trips,Weekly_Telework_Days,Total_Weekly_Trips,VMT_per_Employee,Response_Rate"

func csvInput(rows ...string) string {
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}

var sampleRows = []string{
	"2023-2025,DT,Acme,100,80,0.45,225,50,25,75,25,25,25,50,500,8.5,0.8",
	"2023-2025,ODT,Globex,200,90,,600,100,0,200,0,50,50,0,1000,,",
	"2021-2023,DT,Acme,100,70,50%,250,50,25,75,25,25,25,25,500.0,9,NA",
}
