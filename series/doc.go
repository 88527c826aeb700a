/*
Package series fetches and parses the delimited occupancy feeds.

Three feeds share one transport contract: today's series, tomorrow's
forecast and the real-vs-predicted comparison. A source is either an
http(s) URL or a local file path.

# Basic Usage

	loader := series.NewLoader(series.WithTimeout(10 * time.Second))

	today, err := loader.Load(ctx, "https://example.org/data_2.csv")
	if err != nil {
	    var fe *series.FetchError
	    if errors.As(err, &fe) {
	        // keep serving the previous series
	    }
	}

	cmp, err := loader.LoadComparison(ctx, "Real_vs_Predicted_Occupancy_Data.csv")

# Parsing Rules

The header row gives the column order and every data row is mapped by
header name. Date and Time columns stay strings, every other cell is read
as a float and falls back to 0 when it does not parse. A bad cell never
fails a load. Rows whose time cannot be mapped to a bucket are dropped.

In the comparison feed the first row carrying the RME or MAPE marker ends
the time series. The RME row holds metric A and the MAPE row metric B for
each Occupancy_<area>_predicted column. A missing marker leaves that
metric unavailable for every area.
*/
package series
